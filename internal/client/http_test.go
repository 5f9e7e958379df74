package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/api"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/fixtures"
	"github.com/zerovacancy/zerovacancy/internal/session"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

func newAPI(t *testing.T, auth *session.Provider) *httptest.Server {
	t.Helper()
	deps := api.Dependencies{Store: marketplace.NewMemoryStore(fixtures.Default())}
	if auth != nil {
		deps.Auth = auth
	}
	srv, err := api.NewServer(api.Config{Host: "localhost"}, deps, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newBackend(t *testing.T, baseURL string, token TokenFunc) *HTTPBackend {
	t.Helper()
	b, err := NewHTTPBackend(baseURL, time.Second, token, nil)
	require.NoError(t, err)
	return b
}

func TestNewHTTPBackend_InvalidURL(t *testing.T) {
	_, err := NewHTTPBackend("not a url", 0, nil, nil)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestHTTPBackend_Reads(t *testing.T) {
	ts := newAPI(t, nil)
	b := newBackend(t, ts.URL, nil)
	ctx := context.Background()

	creators, err := b.ListCreators(ctx)
	require.NoError(t, err)
	assert.Empty(t, creators)

	projects, err := b.ListProjects(ctx, marketplace.ProjectFilter{Status: core.ProjectOpen})
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	project, err := b.GetProject(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Vacation Rental Refresh", project.Title)

	apps, err := b.ListApplications(ctx, marketplace.ApplicationFilter{ProjectID: "1"})
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	app, err := b.GetApplication(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Emily Johnson", app.CreatorName)
}

func TestHTTPBackend_NotFound(t *testing.T) {
	ts := newAPI(t, nil)
	b := newBackend(t, ts.URL, nil)

	_, err := b.GetProject(context.Background(), "99")
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = b.GetCreator(context.Background(), "nobody")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestHTTPBackend_ValidationDetails(t *testing.T) {
	ts := newAPI(t, nil)
	b := newBackend(t, ts.URL, nil)

	_, err := b.SubmitApplication(context.Background(), core.Application{
		ProjectID: "1",
		CreatorID: "creator-9",
		Message:   "too short",
	})
	require.Error(t, err)

	e := core.Classify(err)
	assert.Equal(t, core.KindValidation, e.Kind)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "message", e.Details["field"])
}

func TestHTTPBackend_BookingsRequireToken(t *testing.T) {
	tokens, err := session.NewTokenIssuer("secret", "", 0)
	require.NoError(t, err)
	provider := session.NewProvider(session.NewMemoryRepository(), tokens, nil)
	ts := newAPI(t, provider)
	ctx := context.Background()

	anonymous := newBackend(t, ts.URL, nil)
	_, err = anonymous.ListBookings(ctx, marketplace.BookingFilter{})
	assert.Equal(t, core.KindAuth, core.KindOf(err))

	sess, err := provider.SignIn(ctx, core.User{ID: "pm-1", Email: "pm@example.com", Role: core.RolePropertyManager})
	require.NoError(t, err)

	authed := newBackend(t, ts.URL, func(context.Context) (string, error) { return sess.Token, nil })
	booking, err := authed.CreateBooking(ctx, BookingRequest{
		ProjectID:    "2",
		CreatorID:    "creator-3",
		ScheduledFor: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
		Duration:     3 * time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "pm-1", booking.ManagerID)
	assert.Equal(t, 3*time.Hour, booking.Duration)

	bookings, err := authed.ListBookings(ctx, marketplace.BookingFilter{ManagerID: "pm-1"})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBackends_AgreeOnBookingDurations(t *testing.T) {
	tokens, err := session.NewTokenIssuer("secret", "", 0)
	require.NoError(t, err)
	provider := session.NewProvider(session.NewMemoryRepository(), tokens, nil)
	ts := newAPI(t, provider)
	ctx := context.Background()

	sess, err := provider.SignIn(ctx, core.User{ID: "pm-1", Email: "pm@example.com", Role: core.RolePropertyManager})
	require.NoError(t, err)

	remote := newBackend(t, ts.URL, func(context.Context) (string, error) { return sess.Token, nil })
	local := NewSimulatedBackend(marketplace.NewMemoryStore(fixtures.Default()), 0)

	tests := []struct {
		name     string
		duration time.Duration
		wantErr  bool
	}{
		{"whole minutes", 90 * time.Minute, false},
		{"minute and a half", 90 * time.Second, true},
		{"half a minute", 30 * time.Second, true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := BookingRequest{
				ProjectID:    "2",
				CreatorID:    "creator-3",
				ManagerID:    "pm-1",
				ScheduledFor: time.Date(2025, 4, 2+i, 10, 0, 0, 0, time.UTC),
				Duration:     tt.duration,
			}
			for name, b := range map[string]Backend{"http": remote, "simulated": local} {
				booking, err := b.CreateBooking(ctx, req)
				if tt.wantErr {
					e := core.Classify(err)
					assert.Equal(t, core.KindValidation, e.Kind, name)
					assert.Equal(t, "duration", e.Details["field"], name)
					assert.Nil(t, booking, name)
					continue
				}
				require.NoError(t, err, name)
				assert.Equal(t, tt.duration, booking.Duration, name)
			}
		})
	}

	bookings, err := remote.ListBookings(ctx, marketplace.BookingFilter{ManagerID: "pm-1"})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestHTTPBackend_TokenError(t *testing.T) {
	ts := newAPI(t, nil)
	b := newBackend(t, ts.URL, func(context.Context) (string, error) {
		return "", core.ErrSessionNotFound
	})

	_, err := b.ListProjects(context.Background(), marketplace.ProjectFilter{})
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestHTTPBackend_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer ts.Close()

	b := newBackend(t, ts.URL, nil)
	_, err := b.ListCreators(context.Background())

	e := core.Classify(err)
	assert.Equal(t, core.KindAPI, e.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, e.Status)
}

func TestHTTPBackend_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	b := newBackend(t, url, nil)
	_, err := b.ListProjects(context.Background(), marketplace.ProjectFilter{})
	assert.Equal(t, core.KindNetwork, core.KindOf(err))
}

func TestHTTPBackend_CancelledContext(t *testing.T) {
	ts := newAPI(t, nil)
	b := newBackend(t, ts.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.ListProjects(ctx, marketplace.ProjectFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}
