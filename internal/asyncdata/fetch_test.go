package asyncdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

type item struct {
	ID int
	X  int
}

func boolPtr(b bool) *bool { return &b }

func TestFetcher_ResolvesOnMount(t *testing.T) {
	var successes []int
	f := NewFetcher(func(ctx context.Context) (int, error) {
		return 42, nil
	}, FetchOptions[int]{
		OnSuccess: func(v int) { successes = append(successes, v) },
	})

	assert.True(t, f.State().Loading, "loading before the first run settles")

	f.Mount(context.Background())
	f.Wait()

	st := f.State()
	assert.False(t, st.Loading)
	assert.True(t, st.HasData)
	assert.Equal(t, 42, st.Data)
	assert.NoError(t, st.Err)
	assert.Equal(t, []int{42}, successes)
}

func TestFetcher_RejectsWithFallback(t *testing.T) {
	boom := errors.New("boom")
	announcer := &recordingAnnouncer{}
	var gotErr error

	f := NewFetcher(func(ctx context.Context) (item, error) {
		return item{}, boom
	}, FetchOptions[item]{
		ErrorFallback:   &item{X: 0},
		Announcer:       announcer,
		FallbackMessage: "Could not load projects",
		OnError:         func(err error) { gotErr = err },
	})
	f.Mount(context.Background())
	f.Wait()

	st := f.State()
	assert.False(t, st.Loading)
	assert.Same(t, boom, st.Err)
	assert.True(t, st.HasData)
	assert.Equal(t, item{X: 0}, st.Data)
	assert.Same(t, boom, gotErr)

	require.Equal(t, 1, announcer.count())
	assert.Equal(t, "Could not load projects", announcer.calls[0].fallback)
}

func TestFetcher_RejectsWithoutFallbackKeepsPriorData(t *testing.T) {
	f := NewFetcher(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("offline")
	}, FetchOptions[[]string]{RunImmediately: boolPtr(false)})

	st := f.State()
	assert.False(t, st.Loading)
	assert.False(t, st.HasData)

	_, err := f.Refetch(context.Background())
	require.Error(t, err)

	st = f.State()
	assert.False(t, st.HasData)
	assert.Nil(t, st.Data)
	assert.EqualError(t, st.Err, "offline")

	initial := []string{"cached"}
	g := NewFetcher(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("offline")
	}, FetchOptions[[]string]{InitialData: &initial, RunImmediately: boolPtr(false)})
	_, _ = g.Refetch(context.Background())
	assert.Equal(t, initial, g.State().Data)
}

func TestFetcher_DependencyChangeRunsOnce(t *testing.T) {
	var calls atomic.Int32
	f := NewFetcher(func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}, FetchOptions[int32]{Dependencies: []any{"open"}})
	ctx := context.Background()

	f.Mount(ctx)
	f.Wait()
	assert.Equal(t, int32(1), calls.Load())

	assert.False(t, f.SetDependencies(ctx, "open"))
	f.Wait()
	assert.Equal(t, int32(1), calls.Load())

	assert.True(t, f.SetDependencies(ctx, "closed"))
	f.Wait()
	assert.Equal(t, int32(2), calls.Load())

	p := &filter{Status: "open"}
	assert.True(t, f.SetDependencies(ctx, p))
	f.Wait()
	assert.False(t, f.SetDependencies(ctx, p))
	f.Wait()
	assert.True(t, f.SetDependencies(ctx, &filter{Status: "open"}))
	f.Wait()

	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, int32(4), f.State().Data)
}

func TestFetcher_RefetchRunsOnceMore(t *testing.T) {
	var calls atomic.Int32
	f := NewFetcher(func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}, FetchOptions[int32]{})
	ctx := context.Background()

	f.Mount(ctx)
	f.Wait()

	refetch := f.Refetch
	v, err := refetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(2), f.State().Data)
	assert.False(t, f.State().Loading)
}

func TestFetcher_RunImmediatelyFalse(t *testing.T) {
	var calls atomic.Int32
	f := NewFetcher(func(ctx context.Context) (item, error) {
		calls.Add(1)
		return item{ID: 1}, nil
	}, FetchOptions[item]{RunImmediately: boolPtr(false)})

	f.Mount(context.Background())
	f.Wait()
	assert.Zero(t, calls.Load())

	v, err := f.Refetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, item{ID: 1}, v)

	st := f.State()
	assert.Equal(t, item{ID: 1}, st.Data)
	assert.NoError(t, st.Err)
}

func TestFetcher_RefetchFailureUsesFallback(t *testing.T) {
	f := NewFetcher(func(ctx context.Context) (item, error) {
		return item{X: 9}, errors.New("boom")
	}, FetchOptions[item]{
		RunImmediately: boolPtr(false),
		ErrorFallback:  &item{X: 0},
	})

	_, err := f.Refetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	st := f.State()
	assert.Equal(t, item{X: 0}, st.Data)
	assert.Equal(t, "boom", st.Err.Error())
}

func TestFetcher_LatestRunWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	var mu sync.Mutex
	var successes []string
	announcer := &recordingAnnouncer{}
	observer := &recordingObserver{}

	f := NewFetcher(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return "old", nil
		}
		return "new", nil
	}, FetchOptions[string]{
		Announcer: announcer,
		Metrics:   observer,
		OnSuccess: func(v string) {
			mu.Lock()
			successes = append(successes, v)
			mu.Unlock()
		},
	})
	ctx := context.Background()

	f.Mount(ctx)
	<-started

	v, err := f.Refetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(release)
	f.Wait()

	st := f.State()
	assert.Equal(t, "new", st.Data)
	assert.False(t, st.Loading)

	mu.Lock()
	assert.Equal(t, []string{"new"}, successes)
	mu.Unlock()
	assert.Zero(t, announcer.count())
	assert.ElementsMatch(t, []Outcome{OutcomeSuccess, OutcomeDiscarded}, observer.snapshot())
}

func TestFetcher_NewRunCancelsPrevious(t *testing.T) {
	started := make(chan struct{})
	var calls atomic.Int32
	var firstErr atomic.Value

	f := NewFetcher(func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			firstErr.Store(ctx.Err())
			return 0, ctx.Err()
		}
		return 2, nil
	}, FetchOptions[int]{})
	ctx := context.Background()

	f.Mount(ctx)
	<-started
	f.SetDependencies(ctx, "next")
	f.Wait()

	assert.Equal(t, context.Canceled, firstErr.Load())
	st := f.State()
	assert.Equal(t, 2, st.Data)
	assert.NoError(t, st.Err, "a cancelled stale run must not surface its error")
}

func TestFetcher_PanicBecomesUnknownError(t *testing.T) {
	announcer := &recordingAnnouncer{}
	f := NewFetcher(func(ctx context.Context) (int, error) {
		panic("nil map write")
	}, FetchOptions[int]{RunImmediately: boolPtr(false), Announcer: announcer})

	_, err := f.Refetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, core.KindUnknown, core.KindOf(err))
	assert.Contains(t, err.Error(), "nil map write")
	assert.False(t, f.State().Loading)
	assert.Equal(t, 1, announcer.count())
}

func TestFetcher_CloseDiscardsLateResults(t *testing.T) {
	started := make(chan struct{})
	var successes atomic.Int32

	f := NewFetcher(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	}, FetchOptions[int]{
		OnSuccess: func(int) { successes.Add(1) },
		OnError:   func(error) { successes.Add(1) },
	})

	f.Mount(context.Background())
	<-started
	f.Close()

	assert.Zero(t, successes.Load())
	assert.NoError(t, f.State().Err)
	assert.False(t, f.State().Loading, "a cancelled run must not leave the fetcher loading")

	_, err := f.Refetch(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, f.SetDependencies(context.Background(), "anything"))
}

func TestFetcher_LoadingResetOnDependencyChange(t *testing.T) {
	release := make(chan struct{})
	f := NewFetcher(func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	}, FetchOptions[int]{RunImmediately: boolPtr(false)})

	assert.False(t, f.State().Loading)
	f.SetDependencies(context.Background(), 7)
	assert.True(t, f.State().Loading)

	close(release)
	f.Wait()
	assert.Eventually(t, func() bool { return !f.State().Loading }, time.Second, 5*time.Millisecond)
}
