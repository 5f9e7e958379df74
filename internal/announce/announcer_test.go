package announce

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

type redirectRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *redirectRecorder) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *redirectRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

type kindCounter struct {
	mu    sync.Mutex
	kinds []core.Kind
}

func (k *kindCounter) RecordAnnouncement(kind core.Kind) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kinds = append(k.kinds, kind)
}

func newTestAnnouncer(delay time.Duration) (*Announcer, *mockSink, *redirectRecorder) {
	sink := &mockSink{name: "mock"}
	redirects := &redirectRecorder{}
	a := New(Config{LoginPath: "/auth", RedirectDelay: delay}, sink, redirects, nil)
	return a, sink, redirects
}

func TestAnnounce_MessageFallbackChain(t *testing.T) {
	a, sink, _ := newTestAnnouncer(time.Hour)
	defer a.Stop()

	a.Announce(core.Validation("Message must be at least 10 characters", nil), "Could not submit")
	a.Announce(errors.New("disk on fire"), "Could not submit")
	a.Announce(nil, "Could not submit")
	a.Announce(nil, "")

	got := sink.received()
	require.Len(t, got, 4)
	assert.Equal(t, "Message must be at least 10 characters", got[0].Message)
	assert.Equal(t, core.KindValidation, got[0].Kind)
	assert.Equal(t, "Check your input", got[0].Title)
	assert.Equal(t, "disk on fire", got[1].Message)
	assert.Equal(t, core.KindUnknown, got[1].Kind)
	assert.Equal(t, "Could not submit", got[2].Message)
	assert.Equal(t, DefaultMessage, got[3].Message)

	for _, n := range got {
		assert.Equal(t, VariantDestructive, n.Variant)
		assert.False(t, n.At.IsZero())
		assert.Empty(t, n.Redirect)
	}
}

func TestAnnounce_ClassifiesNetworkErrors(t *testing.T) {
	a, sink, redirects := newTestAnnouncer(time.Millisecond)
	defer a.Stop()

	a.Announce(fmt.Errorf("loading projects: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")}), "")

	got := sink.received()
	require.Len(t, got, 1)
	assert.Equal(t, core.KindNetwork, got[0].Kind)
	assert.Equal(t, "Connection problem", got[0].Title)
	assert.Zero(t, redirects.count())
}

func TestAnnounce_AuthRedirectsAfterDelay(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, sink, redirects := newTestAnnouncer(20 * time.Millisecond)
	defer a.Stop()

	a.Announce(core.Auth("Your session has expired"), "")

	got := sink.received()
	require.Len(t, got, 1)
	assert.Equal(t, "Session expired", got[0].Title)
	assert.Equal(t, "/auth", got[0].Redirect)
	assert.Zero(t, redirects.count(), "redirect must wait for the delay")

	assert.Eventually(t, func() bool { return redirects.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"/auth"}, redirects.paths)
}

func TestAnnounce_StopCancelsPendingRedirect(t *testing.T) {
	a, _, redirects := newTestAnnouncer(30 * time.Millisecond)

	a.Announce(core.ErrTokenInvalid, "")
	a.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, redirects.count())

	a.Announce(core.ErrUnauthorized, "")
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, redirects.count(), "no redirects after Stop")
}

func TestAnnounce_DefaultsAndRecorder(t *testing.T) {
	a := New(Config{}, nil, nil, nil)
	assert.Equal(t, DefaultLoginPath, a.loginPath)
	assert.Equal(t, DefaultRedirectDelay, a.delay)

	counter := &kindCounter{}
	a.WithRecorder(counter)
	a.Announce(core.Auth("expired"), "")
	a.Announce(core.NotFound("project", "9"), "")

	assert.Equal(t, []core.Kind{core.KindAuth, core.KindNotFound}, counter.kinds)
}

func TestAnnounce_SinkFailureIsSwallowed(t *testing.T) {
	sink := &mockSink{name: "flaky", shouldFail: true}
	a := New(Config{}, sink, nil, nil)

	assert.NotPanics(t, func() { a.Announce(errors.New("x"), "") })
	assert.Len(t, sink.received(), 1)
}
