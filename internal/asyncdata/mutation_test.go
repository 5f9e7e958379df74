package asyncdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type booking struct {
	ProjectID string
}

type timeline struct {
	mu     sync.Mutex
	events []string
}

func (tl *timeline) add(e string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.events = append(tl.events, e)
}

func (tl *timeline) get() []string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return append([]string(nil), tl.events...)
}

type timelineAnnouncer struct{ tl *timeline }

func (a timelineAnnouncer) Announce(err error, fallback string) { a.tl.add("announce") }

func TestMutation_SuccessOrdering(t *testing.T) {
	tl := &timeline{}
	m := NewMutation(func(ctx context.Context, in booking) (string, error) {
		tl.add("fn")
		return "b-1", nil
	}, MutationOptions[booking, string]{
		OptimisticUpdate: func(in booking) { tl.add("optimistic") },
		Rollback:         func(in booking) { tl.add("rollback") },
		OnSuccess: func(out string, in booking) {
			tl.add("success:" + out + ":" + in.ProjectID)
		},
	})

	out, err := m.Mutate(context.Background(), booking{ProjectID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "b-1", out)
	assert.Equal(t, []string{"optimistic", "fn", "success:b-1:1"}, tl.get())
	assert.Equal(t, MutationState{}, m.State())
}

func TestMutation_FailureRollsBack(t *testing.T) {
	tl := &timeline{}
	fail := errors.New("slot taken")
	observer := &recordingObserver{}

	m := NewMutation(func(ctx context.Context, in booking) (string, error) {
		tl.add("fn")
		return "", fail
	}, MutationOptions[booking, string]{
		OptimisticUpdate: func(in booking) { tl.add("optimistic") },
		Rollback:         func(in booking) { tl.add("rollback") },
		OnError:          func(err error, in booking) { tl.add("error") },
		Announcer:        timelineAnnouncer{tl: tl},
		Metrics:          observer,
	})

	_, err := m.Mutate(context.Background(), booking{ProjectID: "1"})
	assert.Same(t, fail, err)
	assert.Equal(t, []string{"optimistic", "fn", "rollback", "announce", "error"}, tl.get())

	st := m.State()
	assert.False(t, st.Loading)
	assert.Same(t, fail, st.Err)
	assert.Equal(t, []Outcome{OutcomeRolledBack, OutcomeError}, observer.snapshot())
}

func TestMutation_PanickingHooksDoNotMaskError(t *testing.T) {
	fail := errors.New("server said no")
	m := NewMutation(func(ctx context.Context, in booking) (int, error) {
		return 0, fail
	}, MutationOptions[booking, int]{
		OptimisticUpdate: func(in booking) { panic("optimistic exploded") },
		Rollback:         func(in booking) { panic("rollback exploded") },
	})

	_, err := m.Mutate(context.Background(), booking{})
	assert.Same(t, fail, err)
	assert.Same(t, fail, m.State().Err)
}

func TestMutation_LoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	m := NewMutation(func(ctx context.Context, in booking) (int, error) {
		<-release
		return 1, nil
	}, MutationOptions[booking, int]{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Mutate(context.Background(), booking{})
	}()

	assert.Eventually(t, func() bool { return m.State().Loading }, time.Second, time.Millisecond)
	close(release)
	<-done
	assert.False(t, m.State().Loading)
}

func TestMutation_Reset(t *testing.T) {
	m := NewMutation(func(ctx context.Context, in booking) (int, error) {
		return 0, errors.New("nope")
	}, MutationOptions[booking, int]{})

	_, _ = m.Mutate(context.Background(), booking{})
	require.Error(t, m.State().Err)

	m.Reset()
	assert.Equal(t, MutationState{}, m.State())
}

func TestMutation_ResetKeepsLoadingForOutstandingCalls(t *testing.T) {
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	m := NewMutation(func(ctx context.Context, i int) (int, error) {
		<-gates[i]
		if i == 0 {
			return 0, errors.New("older call failed")
		}
		return i, nil
	}, MutationOptions[int, int]{})

	var wg sync.WaitGroup
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Mutate(context.Background(), i)
		}()
	}

	start(0)
	require.Eventually(t, func() bool { return m.State().Loading }, time.Second, time.Millisecond)

	m.Reset()
	assert.True(t, m.State().Loading, "reset must not hide an outstanding call")

	inflight := func(n int) func() bool {
		return func() bool {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.inflight == n
		}
	}

	start(1)
	require.Eventually(t, inflight(2), time.Second, time.Millisecond)
	close(gates[0])
	require.Eventually(t, inflight(1), time.Second, time.Millisecond)

	st := m.State()
	assert.True(t, st.Loading, "second call is still in flight")
	assert.NoError(t, st.Err, "errors from before the reset are dropped")

	close(gates[1])
	wg.Wait()
	assert.Equal(t, MutationState{}, m.State())
}

func TestMutation_NextCallClearsError(t *testing.T) {
	fail := true
	m := NewMutation(func(ctx context.Context, in booking) (int, error) {
		if fail {
			return 0, errors.New("first try fails")
		}
		return 1, nil
	}, MutationOptions[booking, int]{})

	_, _ = m.Mutate(context.Background(), booking{})
	fail = false
	_, err := m.Mutate(context.Background(), booking{})
	require.NoError(t, err)
	assert.NoError(t, m.State().Err)
}
