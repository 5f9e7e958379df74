// internal/api/handler/api/bookings.go
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/api/middleware"
	"github.com/zerovacancy/zerovacancy/internal/api/response"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// BookingsHandler handles shoot bookings.
type BookingsHandler struct {
	store    marketplace.Store
	recorder WriteRecorder
	logger   *zap.Logger
}

// NewBookingsHandler creates a new bookings handler. recorder may be nil.
func NewBookingsHandler(store marketplace.Store, recorder WriteRecorder, logger *zap.Logger) *BookingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingsHandler{store: store, recorder: recorder, logger: logger}
}

// List returns bookings, soonest first. A signed-in caller only sees their
// own bookings.
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := marketplace.BookingFilter{
		ProjectID: q.Get("project_id"),
		CreatorID: q.Get("creator_id"),
		ManagerID: q.Get("manager_id"),
	}
	if user, ok := middleware.UserFrom(r.Context()); ok {
		if err := scopeToUser(&filter, user); err != nil {
			response.Fail(w, err)
			return
		}
	}

	bookings, err := h.store.ListBookings(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, bookings)
}

func scopeToUser(filter *marketplace.BookingFilter, user core.User) error {
	own := &filter.ManagerID
	if user.Role == core.RoleCreator {
		own = &filter.CreatorID
	}
	if *own != "" && *own != user.ID {
		return core.Permission("you can only list your own bookings")
	}
	*own = user.ID
	return nil
}

// BookingRequest is the body of POST /bookings. Duration is in minutes.
type BookingRequest struct {
	ProjectID       string    `json:"projectId"`
	CreatorID       string    `json:"creatorId"`
	ManagerID       string    `json:"managerId"`
	ScheduledFor    time.Time `json:"scheduledFor"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes"`
}

// Create requests a booking. A signed-in property manager is recorded as the
// booking's manager.
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}

	booking := &core.Booking{
		ProjectID:    req.ProjectID,
		CreatorID:    req.CreatorID,
		ManagerID:    req.ManagerID,
		ScheduledFor: req.ScheduledFor,
		Duration:     time.Duration(req.DurationMinutes) * time.Minute,
		Notes:        req.Notes,
	}
	if user, ok := middleware.UserFrom(r.Context()); ok {
		if user.Role != core.RolePropertyManager {
			response.Fail(w, core.Permission("only property managers can book creators"))
			return
		}
		booking.ManagerID = user.ID
	}

	err := h.store.SaveBooking(r.Context(), booking)
	recordWrite(h.recorder, "booking", err)
	if err != nil {
		response.Fail(w, err)
		return
	}

	h.logger.Info("booking requested",
		zap.String("booking_id", booking.ID),
		zap.String("project_id", booking.ProjectID),
		zap.Time("scheduled_for", booking.ScheduledFor),
	)
	response.JSON(w, http.StatusCreated, booking)
}
