package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/announce"
	"github.com/zerovacancy/zerovacancy/internal/announce/webhook"
	"github.com/zerovacancy/zerovacancy/internal/client"
	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/fixtures"
	"github.com/zerovacancy/zerovacancy/internal/logger"
	"github.com/zerovacancy/zerovacancy/internal/metrics"
	"github.com/zerovacancy/zerovacancy/internal/session"
	"github.com/zerovacancy/zerovacancy/internal/storage/archive"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// app bundles what every command needs.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

// setup loads and validates config and builds the logger.
func setup() (*app, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		// defaults plus ZV_* environment overrides
		cfg, err = config.Load("")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log, err := logger.NewWithLevel(debug || cfg.Log.Development, levelFor(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &app{cfg: cfg, log: log}, nil
}

func levelFor(cfg *config.Config) string {
	if debug {
		return "debug"
	}
	return cfg.Log.Level
}

// openStore builds the configured marketplace store, seeded from fixtures.
func (rt *app) openStore(ctx context.Context) (marketplace.Store, error) {
	seed := fixtures.Default()
	if path := rt.cfg.Storage.FixturesPath; path != "" {
		loaded, err := fixtures.Load(path)
		if err != nil {
			return nil, err
		}
		seed = loaded
	}

	switch rt.cfg.Storage.Driver {
	case "", "memory":
		rt.log.Info("using in-memory marketplace store")
		return marketplace.NewMemoryStore(seed), nil
	default:
		store, err := marketplace.OpenSQL(ctx, marketplace.SQLConfig{
			Driver:       rt.cfg.Storage.Driver,
			DSN:          rt.cfg.Storage.DSN,
			MaxOpenConns: rt.cfg.Storage.MaxOpenConns,
		}, &seed)
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", rt.cfg.Storage.Driver, err)
		}
		rt.log.Info("using SQL marketplace store", zap.String("driver", rt.cfg.Storage.Driver))
		return store, nil
	}
}

func (rt *app) openArchive() (archive.Storage, error) {
	blobs, err := archive.New(rt.cfg.Archive.Storage())
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return blobs, nil
}

// openSessions builds the session provider. The returned closer releases
// the repository's connections, if it holds any.
func (rt *app) openSessions(ctx context.Context) (*session.Provider, io.Closer, error) {
	tokens, err := session.NewTokenIssuer(rt.cfg.Session.Secret, rt.cfg.Session.Issuer, rt.cfg.Session.TTL)
	if err != nil {
		return nil, nil, err
	}

	var blobs archive.Storage
	if rt.cfg.Session.Store == "archive" {
		if blobs, err = rt.openArchive(); err != nil {
			return nil, nil, err
		}
	}

	repo, err := session.NewRepository(ctx, rt.cfg.Session, blobs)
	if err != nil {
		return nil, nil, err
	}

	closer := io.Closer(nopCloser{})
	if c, ok := repo.(io.Closer); ok {
		closer = c
	}
	return session.NewProvider(repo, tokens, rt.log), closer, nil
}

// newAnnouncer logs notifications and forwards them to the webhook when one
// is configured. AUTH redirects are printed since there is no browser.
func (rt *app) newAnnouncer(reg *metrics.Registry) (*announce.Announcer, error) {
	sinks := announce.NewFanout()
	if err := sinks.Register(announce.NewLogSink(rt.log)); err != nil {
		return nil, err
	}
	if url := rt.cfg.Announce.WebhookURL; url != "" {
		hook, err := webhook.New(url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating announce webhook: %w", err)
		}
		if err := sinks.Register(hook); err != nil {
			return nil, err
		}
	}

	redirect := announce.RedirectFunc(func(path string) {
		fmt.Fprintf(os.Stderr, "session expired, sign in again (%s)\n", path)
	})

	a := announce.New(rt.cfg.Announce, sinks, redirect, rt.log)
	if reg != nil {
		a.WithRecorder(reg)
	}
	return a, nil
}

// newBackend returns the simulated backend over store, or an HTTP client
// that authenticates with the stored session.
func (rt *app) newBackend(store marketplace.Store, provider *session.Provider) (client.Backend, error) {
	if rt.cfg.Client.Simulated {
		return client.NewSimulatedBackend(store, rt.cfg.Client.SimulatedLatency), nil
	}

	var token client.TokenFunc
	if provider != nil {
		token = func(ctx context.Context) (string, error) {
			s, err := provider.Current(ctx)
			if errors.Is(err, core.ErrSessionNotFound) {
				return "", nil
			}
			if err != nil {
				return "", err
			}
			return s.Token, nil
		}
	}
	return client.NewHTTPBackend(rt.cfg.Client.BaseURL, rt.cfg.Client.Timeout, token, rt.log)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
