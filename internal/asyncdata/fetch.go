package asyncdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Producer loads one value. It should honour ctx cancellation.
type Producer[T any] func(ctx context.Context) (T, error)

// FetchState is a snapshot of a Fetcher.
type FetchState[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
}

// FetchOptions configures a Fetcher. The zero value is usable.
type FetchOptions[T any] struct {
	// InitialData seeds Data before the first run.
	InitialData *T
	// ErrorFallback replaces Data when a run fails.
	ErrorFallback *T

	OnSuccess func(T)
	OnError   func(error)

	// Dependencies is the initial dependency list; see SetDependencies.
	Dependencies []any
	// RunImmediately defaults to true.
	RunImmediately *bool

	Announcer Announcer
	// FallbackMessage is passed to the announcer for errors without a message.
	FallbackMessage string

	Logger  *zap.Logger
	Metrics Observer
	Name    string
}

// Fetcher runs a producer and keeps the latest result.
type Fetcher[T any] struct {
	producer       Producer[T]
	opts           FetchOptions[T]
	runImmediately bool
	logger         *zap.Logger
	metrics        Observer

	mu     sync.Mutex
	state  FetchState[T]
	deps   []any
	seq    uint64
	cancel context.CancelFunc
	closed bool

	wg sync.WaitGroup
}

// NewFetcher creates a Fetcher. Nothing runs until Mount, SetDependencies or
// Refetch is called.
func NewFetcher[T any](producer Producer[T], opts FetchOptions[T]) *Fetcher[T] {
	runImmediately := true
	if opts.RunImmediately != nil {
		runImmediately = *opts.RunImmediately
	}
	name := opts.Name
	if name == "" {
		name = "fetch"
	}
	opts.Name = name

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics Observer = nopObserver{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}

	f := &Fetcher[T]{
		producer:       producer,
		opts:           opts,
		runImmediately: runImmediately,
		logger:         logger.With(zap.String("fetcher", name)),
		metrics:        metrics,
		deps:           append([]any(nil), opts.Dependencies...),
	}
	f.state.Loading = runImmediately
	if opts.InitialData != nil {
		f.state.Data = *opts.InitialData
		f.state.HasData = true
	}
	return f
}

// Mount starts the initial background run unless RunImmediately is false.
func (f *Fetcher[T]) Mount(ctx context.Context) {
	if f.runImmediately {
		f.startBackground(ctx)
	}
}

// SetDependencies replaces the dependency list and starts one background run
// if any element differs from the previous list. It reports whether a run
// was started.
func (f *Fetcher[T]) SetDependencies(ctx context.Context, deps ...any) bool {
	f.mu.Lock()
	if f.closed || sameDeps(f.deps, deps) {
		f.mu.Unlock()
		return false
	}
	f.deps = append([]any(nil), deps...)
	f.mu.Unlock()

	return f.startBackground(ctx)
}

// Refetch runs the producer synchronously, updating state like any other run,
// and returns its result. A failure is announced and still returned.
func (f *Fetcher[T]) Refetch(ctx context.Context) (T, error) {
	runCtx, id, ok := f.begin(ctx)
	if !ok {
		var zero T
		return zero, ErrClosed
	}
	return f.execute(runCtx, id)
}

// State returns a snapshot of the current state.
func (f *Fetcher[T]) State() FetchState[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Wait blocks until every background run has returned.
func (f *Fetcher[T]) Wait() {
	f.wg.Wait()
}

// Close cancels the in-flight run and waits for background runs to return.
// Results that arrive afterwards are discarded and Loading is cleared.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state.Loading = false
	f.mu.Unlock()

	f.wg.Wait()
}

func (f *Fetcher[T]) startBackground(ctx context.Context) bool {
	runCtx, id, ok := f.begin(ctx)
	if !ok {
		return false
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.execute(runCtx, id)
	}()
	return true
}

// begin issues a new sequence number and cancels the previous run.
func (f *Fetcher[T]) begin(ctx context.Context) (context.Context, uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, 0, false
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state.Loading = true
	return runCtx, f.seq, true
}

func (f *Fetcher[T]) execute(ctx context.Context, id uint64) (T, error) {
	start := time.Now()
	value, err := f.call(ctx)
	elapsed := time.Since(start)

	f.mu.Lock()
	if f.closed || id != f.seq {
		f.mu.Unlock()
		f.logger.Debug("discarding stale result", zap.Uint64("run", id))
		f.metrics.Observe(f.opts.Name, OutcomeDiscarded, elapsed)
		return value, err
	}

	f.cancel()
	f.cancel = nil
	f.state.Loading = false
	if err == nil {
		f.state.Data = value
		f.state.HasData = true
		f.state.Err = nil
	} else {
		f.state.Err = err
		if f.opts.ErrorFallback != nil {
			f.state.Data = *f.opts.ErrorFallback
			f.state.HasData = true
		}
	}
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("fetch failed", zap.Uint64("run", id), zap.Error(err))
		f.metrics.Observe(f.opts.Name, OutcomeError, elapsed)
		if f.opts.Announcer != nil {
			f.opts.Announcer.Announce(err, f.opts.FallbackMessage)
		}
		if f.opts.OnError != nil {
			f.opts.OnError(err)
		}
		return value, err
	}

	f.metrics.Observe(f.opts.Name, OutcomeSuccess, elapsed)
	if f.opts.OnSuccess != nil {
		f.opts.OnSuccess(value)
	}
	return value, nil
}

// call invokes the producer, converting a panic into an UNKNOWN error.
func (f *Fetcher[T]) call(ctx context.Context) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = recovered(r)
			f.logger.Error("producer panicked", zap.Any("panic", r))
		}
	}()
	return f.producer(ctx)
}

func recovered(r any) error {
	if e, ok := r.(error); ok {
		return core.Unknown(e.Error(), e)
	}
	return core.Unknown(fmt.Sprint(r), nil)
}
