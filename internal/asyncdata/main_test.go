package asyncdata

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type announcement struct {
	err      error
	fallback string
}

type recordingAnnouncer struct {
	mu    sync.Mutex
	calls []announcement
}

func (r *recordingAnnouncer) Announce(err error, fallback string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, announcement{err: err, fallback: fallback})
}

func (r *recordingAnnouncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recordingObserver) Observe(name string, outcome Outcome, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingObserver) snapshot() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}
