package client

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/asyncdata"
	"github.com/zerovacancy/zerovacancy/internal/core"
)

// PendingPrefix marks optimistic bookings that the server has not confirmed.
const PendingPrefix = "pending:"

// BookingList is the locally displayed booking list. It is safe for
// concurrent use.
type BookingList struct {
	mu       sync.Mutex
	bookings []core.Booking
}

// NewBookingList seeds the list with already known bookings.
func NewBookingList(initial []core.Booking) *BookingList {
	return &BookingList{bookings: slices.Clone(initial)}
}

// Bookings returns a copy of the list.
func (l *BookingList) Bookings() []core.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.bookings)
}

func (l *BookingList) add(b core.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings = append(l.bookings, b)
}

func (l *BookingList) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings = slices.DeleteFunc(l.bookings, func(b core.Booking) bool { return b.ID == id })
}

// replace swaps the placeholder id for b, appending b if the placeholder
// is gone.
func (l *BookingList) replace(id string, b core.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := slices.IndexFunc(l.bookings, func(x core.Booking) bool { return x.ID == id }); i >= 0 {
		l.bookings[i] = b
		return
	}
	l.bookings = append(l.bookings, b)
}

// placeholderID identifies the optimistic entry for req.
func placeholderID(req BookingRequest) string {
	return fmt.Sprintf("%s%s/%s/%d", PendingPrefix, req.ProjectID, req.CreatorID, req.ScheduledFor.UnixNano())
}

// BookingMutationOptions instruments a booking mutation.
type BookingMutationOptions struct {
	Announcer asyncdata.Announcer
	Metrics   asyncdata.Observer
	Logger    *zap.Logger
	// OnBooked runs after the server confirms a booking.
	OnBooked func(core.Booking)
}

// NewBookingMutation returns a mutation that shows the booking in list
// immediately and removes it again if the backend rejects it.
func NewBookingMutation(b Backend, list *BookingList, opts BookingMutationOptions) *asyncdata.Mutation[BookingRequest, *core.Booking] {
	return asyncdata.NewMutation(b.CreateBooking, asyncdata.MutationOptions[BookingRequest, *core.Booking]{
		OptimisticUpdate: func(req BookingRequest) {
			placeholder := *req.booking()
			placeholder.ID = placeholderID(req)
			placeholder.Status = core.BookingRequested
			list.add(placeholder)
		},
		Rollback: func(req BookingRequest) {
			list.remove(placeholderID(req))
		},
		OnSuccess: func(booking *core.Booking, req BookingRequest) {
			list.replace(placeholderID(req), *booking)
			if opts.OnBooked != nil {
				opts.OnBooked(*booking)
			}
		},
		Announcer:       opts.Announcer,
		FallbackMessage: "Could not book this creator",
		Logger:          opts.Logger,
		Metrics:         opts.Metrics,
		Name:            "booking.create",
	})
}

// Schedule checks the form locally and then runs the mutation. Form errors
// never reach the backend or the optimistic list.
func Schedule(ctx context.Context, m *asyncdata.Mutation[BookingRequest, *core.Booking], req BookingRequest) (*core.Booking, error) {
	if err := ValidateBookingRequest(req, time.Now()); err != nil {
		return nil, err
	}
	return m.Mutate(ctx, req)
}

// ValidateBookingRequest mirrors the booking form's checks: a project and a
// creator, a date that is not in the past and a positive duration in whole
// minutes.
func ValidateBookingRequest(req BookingRequest, now time.Time) error {
	if req.ProjectID == "" {
		return core.Validation("project is required", map[string]any{"field": "projectId"})
	}
	if req.CreatorID == "" {
		return core.Validation("creator is required", map[string]any{"field": "creatorId"})
	}
	if req.ScheduledFor.IsZero() {
		return core.Validation("a date is required", map[string]any{"field": "scheduledFor"})
	}
	if req.ScheduledFor.Before(now) {
		return core.Validation("the shoot cannot be scheduled in the past", map[string]any{"field": "scheduledFor"})
	}
	if req.Duration <= 0 {
		return core.Validation("duration must be positive", map[string]any{"field": "duration"})
	}
	if req.Duration%time.Minute != 0 {
		return core.Validation(core.WholeMinutesMessage, map[string]any{"field": "duration"})
	}
	return nil
}
