package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/announce"
	"github.com/zerovacancy/zerovacancy/internal/client"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/session"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

var jsonOutput bool

// clientEnv is what the client commands work with.
type clientEnv struct {
	*app
	backend   client.Backend
	announcer *announce.Announcer
	provider  *session.Provider // nil when no session secret is configured
}

// currentUser returns the signed-in user, or the zero User.
func (e *clientEnv) currentUser(ctx context.Context) (core.User, error) {
	if e.provider == nil {
		return core.User{}, nil
	}
	s, err := e.provider.Current(ctx)
	if errors.Is(err, core.ErrSessionNotFound) {
		return core.User{}, nil
	}
	if err != nil {
		return core.User{}, err
	}
	return s.User, nil
}

// withClient handles backend, session and announcer setup and teardown.
func withClient(fn func(ctx context.Context, env *clientEnv) error) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx := context.Background()
	env := &clientEnv{app: rt}

	if rt.cfg.Session.Secret != "" {
		provider, closer, err := rt.openSessions(ctx)
		if err != nil {
			return err
		}
		defer closer.Close()
		env.provider = provider
	}

	var store marketplace.Store
	if rt.cfg.Client.Simulated {
		if store, err = rt.openStore(ctx); err != nil {
			return err
		}
		defer store.Close()
	}

	if env.backend, err = rt.newBackend(store, env.provider); err != nil {
		return err
	}

	if env.announcer, err = rt.newAnnouncer(nil); err != nil {
		return err
	}
	defer env.announcer.Stop()

	if err := fn(ctx, env); err != nil {
		rt.log.Debug("command failed", zap.Error(err))
		return err
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatCents(cents int) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
