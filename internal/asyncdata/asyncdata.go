// Package asyncdata standardizes the loading, success, and error lifecycle of
// asynchronous reads (Fetcher) and optimistic writes (Mutation).
//
// A Fetcher owns one state slot. Every run is tagged with a sequence number
// and only the most recently started run may write to that slot or fire
// callbacks, so an older request finishing late never overwrites a newer one.
package asyncdata

import (
	"time"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Announcer turns a failure into a user-facing notification.
type Announcer interface {
	Announce(err error, fallback string)
}

// Outcome labels a finished run for observers.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeError      Outcome = "error"
	OutcomeDiscarded  Outcome = "discarded"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Observer receives one call per finished run.
type Observer interface {
	Observe(name string, outcome Outcome, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Observe(string, Outcome, time.Duration) {}

// ErrClosed is returned by Refetch after Close.
var ErrClosed = &core.Error{Kind: core.KindUnknown, Code: "FETCHER_CLOSED", Message: "fetcher is closed"}
