// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/zerovacancy/zerovacancy/internal/api/handler/api"
	"github.com/zerovacancy/zerovacancy/internal/api/middleware"
	"github.com/zerovacancy/zerovacancy/internal/metrics"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// Server represents the ZeroVacancy HTTP API server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MetricsPath  string // empty disables /metrics
}

// Dependencies holds the server's collaborators. Auth may be nil, which
// leaves the write routes unauthenticated. Metrics may be nil.
type Dependencies struct {
	Store   marketplace.Store
	Auth    middleware.Authenticator
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("api server requires a store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
	}
	s.setupRoutes(cfg)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	var recorder apihandler.WriteRecorder
	if s.deps.Metrics != nil {
		recorder = s.deps.Metrics
	}

	creators := apihandler.NewCreatorsHandler(s.deps.Store)
	projects := apihandler.NewProjectsHandler(s.deps.Store)
	applications := apihandler.NewApplicationsHandler(s.deps.Store, recorder, s.logger)
	bookings := apihandler.NewBookingsHandler(s.deps.Store, recorder, s.logger)

	// Read routes are public
	s.mux.HandleFunc("GET /creators", creators.List)
	s.mux.HandleFunc("GET /creators/{id}", creators.Get)
	s.mux.HandleFunc("GET /projects", projects.List)
	s.mux.HandleFunc("GET /projects/{id}", projects.Get)
	s.mux.HandleFunc("GET /applications", applications.List)
	s.mux.HandleFunc("GET /applications/{id}", applications.Get)

	// Bookings and application submission need a session when auth is on
	authMw := middleware.BearerAuth(s.deps.Auth)
	s.mux.Handle("POST /projects/{id}/applications", authMw(http.HandlerFunc(applications.Submit)))
	s.mux.Handle("GET /bookings", authMw(http.HandlerFunc(bookings.List)))
	s.mux.Handle("POST /bookings", authMw(http.HandlerFunc(bookings.Create)))

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
