package marketplace

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/fixtures"
)

// MemoryStore is an in-memory marketplace store seeded from fixtures.
type MemoryStore struct {
	creators     []core.Creator
	projects     []core.Project
	applications []core.Application
	bookings     []core.Booking
	mu           sync.RWMutex
}

// NewMemoryStore creates a store holding a copy of the given fixtures.
func NewMemoryStore(seed fixtures.Set) *MemoryStore {
	m := &MemoryStore{
		creators:     make([]core.Creator, len(seed.Creators)),
		projects:     make([]core.Project, len(seed.Projects)),
		applications: make([]core.Application, len(seed.Applications)),
		bookings:     []core.Booking{},
	}
	copy(m.creators, seed.Creators)
	copy(m.projects, seed.Projects)
	copy(m.applications, seed.Applications)
	return m
}

// ListCreators returns all creators.
func (m *MemoryStore) ListCreators(ctx context.Context) ([]core.Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]core.Creator, len(m.creators))
	copy(result, m.creators)
	return result, nil
}

// GetCreator retrieves a creator by ID.
func (m *MemoryStore) GetCreator(ctx context.Context, id string) (*core.Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.creators {
		if m.creators[i].ID == id {
			c := m.creators[i]
			return &c, nil
		}
	}
	return nil, core.NotFound("creator", id)
}

// ListProjects returns projects matching the filter.
func (m *MemoryStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]core.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []core.Project{}
	for _, p := range m.projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ManagerID != "" && p.ManagerID != filter.ManagerID {
			continue
		}
		result = append(result, p)
	}

	return paginate(result, filter.Offset, filter.Limit), nil
}

// GetProject retrieves a project by ID.
func (m *MemoryStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.projects {
		if m.projects[i].ID == id {
			p := m.projects[i]
			return &p, nil
		}
	}
	return nil, core.NotFound("project", id)
}

// ListApplications returns applications matching the filter.
func (m *MemoryStore) ListApplications(ctx context.Context, filter ApplicationFilter) ([]core.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []core.Application{}
	for _, a := range m.applications {
		if filter.ProjectID != "" && a.ProjectID != filter.ProjectID {
			continue
		}
		if filter.CreatorID != "" && a.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// GetApplication retrieves an application by ID.
func (m *MemoryStore) GetApplication(ctx context.Context, id string) (*core.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.applications {
		if m.applications[i].ID == id {
			a := m.applications[i]
			return &a, nil
		}
	}
	return nil, core.NotFound("application", id)
}

// SaveApplication adds an application for an existing project.
func (m *MemoryStore) SaveApplication(ctx context.Context, app *core.Application) error {
	if app.Status == "" {
		app.Status = core.ApplicationPending
	}
	if err := app.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasProject(app.ProjectID) {
		return core.NotFound("project", app.ProjectID)
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}
	m.applications = append(m.applications, *app)
	return nil
}

// ListBookings returns bookings matching the filter, soonest first.
func (m *MemoryStore) ListBookings(ctx context.Context, filter BookingFilter) ([]core.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []core.Booking{}
	for _, b := range m.bookings {
		if filter.ProjectID != "" && b.ProjectID != filter.ProjectID {
			continue
		}
		if filter.CreatorID != "" && b.CreatorID != filter.CreatorID {
			continue
		}
		if filter.ManagerID != "" && b.ManagerID != filter.ManagerID {
			continue
		}
		result = append(result, b)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ScheduledFor.Before(result[j].ScheduledFor)
	})
	return result, nil
}

// SaveBooking adds a booking for an existing project.
func (m *MemoryStore) SaveBooking(ctx context.Context, booking *core.Booking) error {
	if booking.Status == "" {
		booking.Status = core.BookingRequested
	}
	if err := booking.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasProject(booking.ProjectID) {
		return core.NotFound("project", booking.ProjectID)
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	m.bookings = append(m.bookings, *booking)
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) hasProject(id string) bool {
	for _, p := range m.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
