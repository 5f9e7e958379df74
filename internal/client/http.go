package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

const defaultTimeout = 10 * time.Second

// TokenFunc returns the bearer token for a request. An empty token sends
// the request unauthenticated.
type TokenFunc func(ctx context.Context) (string, error)

// HTTPBackend implements Backend against the marketplace HTTP API.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
	token   TokenFunc
	logger  *zap.Logger
}

// NewHTTPBackend creates a client for the API at baseURL.
func NewHTTPBackend(baseURL string, timeout time.Duration, token TokenFunc, logger *zap.Logger) (*HTTPBackend, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("invalid api base url %q", baseURL))
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		token:   token,
		logger:  logger.Named("client"),
	}, nil
}

func (b *HTTPBackend) ListCreators(ctx context.Context) ([]core.Creator, error) {
	var creators []core.Creator
	if err := b.do(ctx, http.MethodGet, "/creators", nil, nil, &creators); err != nil {
		return nil, err
	}
	return creators, nil
}

func (b *HTTPBackend) GetCreator(ctx context.Context, id string) (*core.Creator, error) {
	var creator core.Creator
	if err := b.do(ctx, http.MethodGet, "/creators/"+url.PathEscape(id), nil, nil, &creator); err != nil {
		return nil, err
	}
	return &creator, nil
}

func (b *HTTPBackend) ListProjects(ctx context.Context, filter marketplace.ProjectFilter) ([]core.Project, error) {
	q := url.Values{}
	setIf(q, "status", string(filter.Status))
	setIf(q, "manager_id", filter.ManagerID)
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	var projects []core.Project
	if err := b.do(ctx, http.MethodGet, "/projects", q, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (b *HTTPBackend) GetProject(ctx context.Context, id string) (*core.Project, error) {
	var project core.Project
	if err := b.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (b *HTTPBackend) ListApplications(ctx context.Context, filter marketplace.ApplicationFilter) ([]core.Application, error) {
	q := url.Values{}
	setIf(q, "project_id", filter.ProjectID)
	setIf(q, "creator_id", filter.CreatorID)
	setIf(q, "status", string(filter.Status))

	var apps []core.Application
	if err := b.do(ctx, http.MethodGet, "/applications", q, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (b *HTTPBackend) GetApplication(ctx context.Context, id string) (*core.Application, error) {
	var app core.Application
	if err := b.do(ctx, http.MethodGet, "/applications/"+url.PathEscape(id), nil, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (b *HTTPBackend) SubmitApplication(ctx context.Context, app core.Application) (*core.Application, error) {
	payload := map[string]any{
		"creatorId":    app.CreatorID,
		"creatorName":  app.CreatorName,
		"message":      app.Message,
		"proposedRate": app.ProposedRate,
	}
	var created core.Application
	path := "/projects/" + url.PathEscape(app.ProjectID) + "/applications"
	if err := b.do(ctx, http.MethodPost, path, nil, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (b *HTTPBackend) ListBookings(ctx context.Context, filter marketplace.BookingFilter) ([]core.Booking, error) {
	q := url.Values{}
	setIf(q, "project_id", filter.ProjectID)
	setIf(q, "creator_id", filter.CreatorID)
	setIf(q, "manager_id", filter.ManagerID)

	var bookings []core.Booking
	if err := b.do(ctx, http.MethodGet, "/bookings", q, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (b *HTTPBackend) CreateBooking(ctx context.Context, req BookingRequest) (*core.Booking, error) {
	// The server takes minutes; refuse anything that would be truncated.
	if req.Duration%time.Minute != 0 {
		return nil, core.Validation(core.WholeMinutesMessage, map[string]any{"field": "duration"})
	}
	payload := map[string]any{
		"projectId":       req.ProjectID,
		"creatorId":       req.CreatorID,
		"managerId":       req.ManagerID,
		"scheduledFor":    req.ScheduledFor,
		"durationMinutes": int(req.Duration / time.Minute),
		"notes":           req.Notes,
	}
	var booking core.Booking
	if err := b.do(ctx, http.MethodPost, "/bookings", nil, payload, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// do sends one request and decodes a 2xx body into out. Non-2xx responses
// become core errors by status; transport failures are classified.
func (b *HTTPBackend) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := b.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != nil {
		token, err := b.token(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		// Cancellation is the caller's doing, not a network problem.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return core.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return b.statusError(method, path, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.API("unreadable response from server", resp.StatusCode, map[string]any{"cause": err.Error()})
	}
	return nil
}

// errorEnvelope mirrors the server's error body.
type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Kind    core.Kind      `json:"kind"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (b *HTTPBackend) statusError(method, path string, resp *http.Response) error {
	var env errorEnvelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &env)

	e := core.FromStatus(resp.StatusCode, env.Error.Message)
	if env.Error.Details != nil {
		e.Details = env.Error.Details
	}

	b.logger.Debug("api request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("code", env.Error.Code),
	)
	return e
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
