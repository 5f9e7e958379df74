package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerovacancy/zerovacancy/internal/asyncdata"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/fixtures"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

type announcement struct {
	err      error
	fallback string
}

type recordingAnnouncer struct {
	mu    sync.Mutex
	calls []announcement
}

func (a *recordingAnnouncer) Announce(err error, fallback string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, announcement{err: err, fallback: fallback})
}

func (a *recordingAnnouncer) snapshot() []announcement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]announcement(nil), a.calls...)
}

type countingObserver struct {
	mu    sync.Mutex
	names map[string]int
}

func (o *countingObserver) Observe(name string, outcome asyncdata.Outcome, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.names == nil {
		o.names = make(map[string]int)
	}
	o.names[name]++
}

// failingBackend fails project listing and delegates everything else.
type failingBackend struct {
	Backend
	err error
}

func (f failingBackend) ListProjects(ctx context.Context, filter marketplace.ProjectFilter) ([]core.Project, error) {
	return nil, f.err
}

func TestLoadDashboard_Manager(t *testing.T) {
	b := NewSimulatedBackend(marketplace.NewMemoryStore(fixtures.Default()), 5*time.Millisecond)
	observer := &countingObserver{}

	d, err := LoadDashboard(context.Background(), b, DashboardOptions{
		User:    core.User{ID: "pm-2", Role: core.RolePropertyManager},
		Metrics: observer,
	})
	require.NoError(t, err)

	require.Len(t, d.Projects, 1)
	assert.Equal(t, "3", d.Projects[0].ID)
	assert.Len(t, d.Applications, 3)
	assert.Empty(t, d.Creators)
	assert.NotNil(t, d.Bookings)
	assert.Len(t, observer.names, 4)
}

func TestLoadDashboard_Creator(t *testing.T) {
	b := NewSimulatedBackend(marketplace.NewMemoryStore(fixtures.Default()), 0)

	d, err := LoadDashboard(context.Background(), b, DashboardOptions{
		User: core.User{ID: "creator-3", Role: core.RoleCreator},
	})
	require.NoError(t, err)

	assert.Len(t, d.Projects, 2, "creators see open projects")
	require.Len(t, d.Applications, 1)
	assert.Equal(t, core.ApplicationAccepted, d.Applications[0].Status)
}

func TestLoadDashboard_SectionFailureIsAnnounced(t *testing.T) {
	boom := core.Network("unable to reach the server", errors.New("dial tcp: refused"))
	b := failingBackend{
		Backend: NewSimulatedBackend(marketplace.NewMemoryStore(fixtures.Default()), 0),
		err:     boom,
	}
	announcer := &recordingAnnouncer{}

	d, err := LoadDashboard(context.Background(), b, DashboardOptions{Announcer: announcer})
	assert.Same(t, boom, err)

	assert.NotNil(t, d.Projects)
	assert.Empty(t, d.Projects)
	assert.Len(t, d.Applications, 3, "other sections still load")

	calls := announcer.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "Could not load projects", calls[0].fallback)
}
