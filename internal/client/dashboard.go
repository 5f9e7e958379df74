package client

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zerovacancy/zerovacancy/internal/asyncdata"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// Dashboard is everything a signed-in user's home screen shows.
type Dashboard struct {
	Projects     []core.Project
	Applications []core.Application
	Creators     []core.Creator
	Bookings     []core.Booking
}

// DashboardOptions scopes and instruments a dashboard load.
type DashboardOptions struct {
	// User scopes the sections. A zero User loads the public view without
	// bookings.
	User core.User

	Announcer asyncdata.Announcer
	Metrics   asyncdata.Observer
	Logger    *zap.Logger
}

// LoadDashboard loads every section concurrently. A failed section is
// announced and left empty; the first failure is returned alongside the
// partially filled dashboard.
func LoadDashboard(ctx context.Context, b Backend, opts DashboardOptions) (*Dashboard, error) {
	d := &Dashboard{
		Projects:     []core.Project{},
		Applications: []core.Application{},
		Creators:     []core.Creator{},
		Bookings:     []core.Booking{},
	}

	projectFilter := marketplace.ProjectFilter{}
	appFilter := marketplace.ApplicationFilter{}
	var bookingFilter marketplace.BookingFilter

	switch opts.User.Role {
	case core.RolePropertyManager:
		projectFilter.ManagerID = opts.User.ID
		bookingFilter.ManagerID = opts.User.ID
	case core.RoleCreator:
		projectFilter.Status = core.ProjectOpen
		appFilter.CreatorID = opts.User.ID
		bookingFilter.CreatorID = opts.User.ID
	}

	var g errgroup.Group

	g.Go(section(ctx, opts, "dashboard.projects", "Could not load projects", &d.Projects,
		func(ctx context.Context) ([]core.Project, error) { return b.ListProjects(ctx, projectFilter) }))
	g.Go(section(ctx, opts, "dashboard.applications", "Could not load applications", &d.Applications,
		func(ctx context.Context) ([]core.Application, error) { return b.ListApplications(ctx, appFilter) }))
	g.Go(section(ctx, opts, "dashboard.creators", "Could not load creators", &d.Creators,
		b.ListCreators))
	if opts.User.ID != "" {
		g.Go(section(ctx, opts, "dashboard.bookings", "Could not load bookings", &d.Bookings,
			func(ctx context.Context) ([]core.Booking, error) { return b.ListBookings(ctx, bookingFilter) }))
	}

	err := g.Wait()
	return d, err
}

// section runs one fetcher to completion and stores its data in dst. Each
// goroutine writes only its own field.
func section[T any](ctx context.Context, opts DashboardOptions, name, fallback string, dst *[]T, fetch asyncdata.Producer[[]T]) func() error {
	return func() error {
		empty := []T{}
		f := asyncdata.NewFetcher(fetch, asyncdata.FetchOptions[[]T]{
			ErrorFallback:   &empty,
			RunImmediately:  boolPtr(false),
			Announcer:       opts.Announcer,
			FallbackMessage: fallback,
			Logger:          opts.Logger,
			Metrics:         opts.Metrics,
			Name:            name,
		})
		defer f.Close()

		_, err := f.Refetch(ctx)
		if data := f.State().Data; data != nil {
			*dst = data
		}
		return err
	}
}

func boolPtr(b bool) *bool { return &b }
