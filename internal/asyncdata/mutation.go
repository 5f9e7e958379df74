package asyncdata

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MutationState is a snapshot of a Mutation.
type MutationState struct {
	Loading bool
	Err     error
}

// MutationOptions configures a Mutation. The zero value is usable.
type MutationOptions[In, Out any] struct {
	OnSuccess func(out Out, in In)
	OnError   func(err error, in In)

	// OptimisticUpdate runs before the mutation starts.
	OptimisticUpdate func(in In)
	// Rollback runs only when the mutation fails.
	Rollback func(in In)

	Announcer       Announcer
	FallbackMessage string

	Logger  *zap.Logger
	Metrics Observer
	Name    string
}

// Mutation wraps a write with optimistic update and rollback hooks.
type Mutation[In, Out any] struct {
	fn      func(context.Context, In) (Out, error)
	opts    MutationOptions[In, Out]
	logger  *zap.Logger
	metrics Observer

	mu       sync.Mutex
	inflight int
	err      error
	// gen advances on Reset; calls started earlier no longer write err.
	gen uint64
}

// NewMutation creates a Mutation around fn.
func NewMutation[In, Out any](fn func(context.Context, In) (Out, error), opts MutationOptions[In, Out]) *Mutation[In, Out] {
	if opts.Name == "" {
		opts.Name = "mutation"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics Observer = nopObserver{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	return &Mutation[In, Out]{
		fn:      fn,
		opts:    opts,
		logger:  logger.With(zap.String("mutation", opts.Name)),
		metrics: metrics,
	}
}

// Mutate applies the optimistic update, runs the mutation and settles state.
// On failure the rollback runs before the error is announced and returned.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.inflight++
	m.err = nil
	gen := m.gen
	m.mu.Unlock()

	start := time.Now()
	if m.opts.OptimisticUpdate != nil {
		m.guard("optimistic update", func() { m.opts.OptimisticUpdate(in) })
	}

	out, err := m.call(ctx, in)
	elapsed := time.Since(start)

	if err == nil {
		if m.opts.OnSuccess != nil {
			m.opts.OnSuccess(out, in)
		}
		m.settle(gen, nil)
		m.metrics.Observe(m.opts.Name, OutcomeSuccess, elapsed)
		return out, nil
	}

	m.logger.Warn("mutation failed", zap.Error(err))
	if m.opts.Rollback != nil {
		m.guard("rollback", func() { m.opts.Rollback(in) })
		m.metrics.Observe(m.opts.Name, OutcomeRolledBack, elapsed)
	}
	if m.opts.Announcer != nil {
		m.opts.Announcer.Announce(err, m.opts.FallbackMessage)
	}
	if m.opts.OnError != nil {
		m.opts.OnError(err, in)
	}
	m.settle(gen, err)
	m.metrics.Observe(m.opts.Name, OutcomeError, elapsed)

	var zero Out
	return zero, err
}

// State returns a snapshot. Loading stays true while any Mutate call is
// outstanding.
func (m *Mutation[In, Out]) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MutationState{Loading: m.inflight > 0, Err: m.err}
}

// Reset clears the error. Calls still in flight keep Loading true until they
// settle, but their errors are not recorded.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = nil
	m.gen++
}

func (m *Mutation[In, Out]) settle(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
	if gen == m.gen {
		m.err = err
	}
}

func (m *Mutation[In, Out]) call(ctx context.Context, in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero Out
			out = zero
			err = recovered(r)
			m.logger.Error("mutation panicked", zap.Any("panic", r))
		}
	}()
	return m.fn(ctx, in)
}

// guard runs a caller hook, logging and swallowing any panic.
func (m *Mutation[In, Out]) guard(hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("hook panicked", zap.String("hook", hook), zap.Any("panic", r))
		}
	}()
	fn()
}
