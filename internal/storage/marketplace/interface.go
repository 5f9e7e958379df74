// Package marketplace persists creators, projects, applications and bookings.
package marketplace

import (
	"context"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Store defines the interface for marketplace persistence.
type Store interface {
	// ListCreators returns every creator in the directory.
	ListCreators(ctx context.Context) ([]core.Creator, error)

	// GetCreator retrieves a creator by ID.
	GetCreator(ctx context.Context, id string) (*core.Creator, error)

	// ListProjects retrieves projects matching the filter.
	ListProjects(ctx context.Context, filter ProjectFilter) ([]core.Project, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id string) (*core.Project, error)

	// ListApplications retrieves applications matching the filter.
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]core.Application, error)

	// GetApplication retrieves an application by ID.
	GetApplication(ctx context.Context, id string) (*core.Application, error)

	// SaveApplication validates and persists an application, assigning an ID if unset.
	SaveApplication(ctx context.Context, app *core.Application) error

	// ListBookings retrieves bookings matching the filter.
	ListBookings(ctx context.Context, filter BookingFilter) ([]core.Booking, error)

	// SaveBooking validates and persists a booking, assigning an ID if unset.
	SaveBooking(ctx context.Context, booking *core.Booking) error

	// Close releases underlying resources.
	Close() error
}

// ProjectFilter defines criteria for listing projects.
type ProjectFilter struct {
	Status    core.ProjectStatus
	ManagerID string
	Limit     int
	Offset    int
}

// ApplicationFilter defines criteria for listing applications.
type ApplicationFilter struct {
	ProjectID string
	CreatorID string
	Status    core.ApplicationStatus
}

// BookingFilter defines criteria for listing bookings.
type BookingFilter struct {
	ProjectID string
	CreatorID string
	ManagerID string
}
