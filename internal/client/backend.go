// Package client talks to the marketplace API, either over HTTP or against an
// in-process store with artificial latency.
package client

import (
	"context"
	"time"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// Backend is the marketplace API as seen by callers.
type Backend interface {
	ListCreators(ctx context.Context) ([]core.Creator, error)
	GetCreator(ctx context.Context, id string) (*core.Creator, error)

	ListProjects(ctx context.Context, filter marketplace.ProjectFilter) ([]core.Project, error)
	GetProject(ctx context.Context, id string) (*core.Project, error)

	ListApplications(ctx context.Context, filter marketplace.ApplicationFilter) ([]core.Application, error)
	GetApplication(ctx context.Context, id string) (*core.Application, error)
	SubmitApplication(ctx context.Context, app core.Application) (*core.Application, error)

	ListBookings(ctx context.Context, filter marketplace.BookingFilter) ([]core.Booking, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*core.Booking, error)
}

// BookingRequest is what the booking form submits.
type BookingRequest struct {
	ProjectID    string
	CreatorID    string
	ManagerID    string
	ScheduledFor time.Time
	Duration     time.Duration
	Notes        string
}

func (r BookingRequest) booking() *core.Booking {
	return &core.Booking{
		ProjectID:    r.ProjectID,
		CreatorID:    r.CreatorID,
		ManagerID:    r.ManagerID,
		ScheduledFor: r.ScheduledFor,
		Duration:     r.Duration,
		Notes:        r.Notes,
	}
}
