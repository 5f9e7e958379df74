package client

import (
	"context"
	"time"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// DefaultLatency is the artificial delay of the simulated backend.
const DefaultLatency = 500 * time.Millisecond

// SimulatedBackend serves a marketplace.Store in-process after a fixed
// delay. It shares the store with the HTTP server, so both see the same data.
type SimulatedBackend struct {
	store   marketplace.Store
	latency time.Duration
}

// NewSimulatedBackend wraps store. A negative latency is treated as zero.
func NewSimulatedBackend(store marketplace.Store, latency time.Duration) *SimulatedBackend {
	if latency < 0 {
		latency = 0
	}
	return &SimulatedBackend{store: store, latency: latency}
}

func (s *SimulatedBackend) ListCreators(ctx context.Context) ([]core.Creator, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCreators(ctx)
}

func (s *SimulatedBackend) GetCreator(ctx context.Context, id string) (*core.Creator, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.GetCreator(ctx, id)
}

func (s *SimulatedBackend) ListProjects(ctx context.Context, filter marketplace.ProjectFilter) ([]core.Project, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.ListProjects(ctx, filter)
}

func (s *SimulatedBackend) GetProject(ctx context.Context, id string) (*core.Project, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, id)
}

func (s *SimulatedBackend) ListApplications(ctx context.Context, filter marketplace.ApplicationFilter) ([]core.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.ListApplications(ctx, filter)
}

func (s *SimulatedBackend) GetApplication(ctx context.Context, id string) (*core.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.GetApplication(ctx, id)
}

func (s *SimulatedBackend) SubmitApplication(ctx context.Context, app core.Application) (*core.Application, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	app.ID = ""
	app.Status = ""
	if err := s.store.SaveApplication(ctx, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *SimulatedBackend) ListBookings(ctx context.Context, filter marketplace.BookingFilter) ([]core.Booking, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.store.ListBookings(ctx, filter)
}

func (s *SimulatedBackend) CreateBooking(ctx context.Context, req BookingRequest) (*core.Booking, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	booking := req.booking()
	if err := s.store.SaveBooking(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *SimulatedBackend) wait(ctx context.Context) error {
	if s.latency == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
