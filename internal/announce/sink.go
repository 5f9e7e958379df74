package announce

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Sink delivers notifications somewhere a user or operator will see them.
type Sink interface {
	// Name returns the unique identifier for this sink
	Name() string

	// Send delivers a single notification
	Send(ctx context.Context, n Notification) error
}

// LogSink writes notifications to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging at warn level.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, n Notification) error {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.String("kind", string(n.Kind)),
		zap.String("variant", n.Variant),
	}
	if n.Redirect != "" {
		fields = append(fields, zap.String("redirect", n.Redirect))
	}
	s.logger.Warn("notification", fields...)
	return nil
}

// Fanout is a registry of sinks that delivers to every member.
type Fanout struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewFanout creates an empty fanout
func NewFanout() *Fanout {
	return &Fanout{
		sinks: make(map[string]Sink),
	}
}

func (f *Fanout) Name() string { return "fanout" }

// Register adds a sink to the fanout
func (f *Fanout) Register(s Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := s.Name()
	if _, exists := f.sinks[name]; exists {
		return fmt.Errorf("sink %s already registered", name)
	}

	f.sinks[name] = s
	return nil
}

// Get retrieves a sink by name
func (f *Fanout) Get(name string) (Sink, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, exists := f.sinks[name]
	if !exists {
		return nil, fmt.Errorf("sink %s not found", name)
	}
	return s, nil
}

// Names returns the registered sink names in sorted order
func (f *Fanout) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.sinks))
	for name := range f.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SendAll delivers n to every sink and returns failures keyed by sink name
func (f *Fanout) SendAll(ctx context.Context, n Notification) map[string]error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	failures := make(map[string]error)
	for name, s := range f.sinks {
		if err := s.Send(ctx, n); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// Send implements Sink, joining per-sink failures.
func (f *Fanout) Send(ctx context.Context, n Notification) error {
	failures := f.SendAll(ctx, n)
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, 0, len(failures))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, failures[name]))
	}
	return errors.Join(errs...)
}
