package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Home paths per role.
const (
	CreatorHome = "/creator/dashboard"
	ManagerHome = "/dashboard"
)

// Provider signs users in and out over a Repository.
type Provider struct {
	repo   Repository
	tokens *TokenIssuer
	logger *zap.Logger
}

func NewProvider(repo Repository, tokens *TokenIssuer, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{repo: repo, tokens: tokens, logger: logger.Named("session")}
}

// SignIn issues a token for user and persists the session.
func (p *Provider) SignIn(ctx context.Context, user core.User) (*Session, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	token, expires, err := p.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	s := Session{Token: token, User: user, ExpiresAt: expires}
	if err := p.repo.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	p.logger.Info("signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &s, nil
}

// Current returns the stored session after re-verifying its token. An
// invalid or expired token clears the session and yields an AUTH error.
func (p *Provider) Current(ctx context.Context) (*Session, error) {
	s, err := p.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	user, err := p.tokens.Verify(s.Token)
	if err != nil {
		if clearErr := p.repo.Clear(ctx); clearErr != nil {
			p.logger.Warn("failed to clear invalid session", zap.Error(clearErr))
		}
		return nil, err
	}
	s.User = user
	return s, nil
}

// SignOut clears the stored session. Signing out twice is not an error.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.repo.Clear(ctx); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		return err
	}
	p.logger.Info("signed out")
	return nil
}

// Authenticate verifies a bearer token without touching the repository.
func (p *Provider) Authenticate(token string) (core.User, error) {
	if token == "" {
		return core.User{}, core.ErrUnauthorized
	}
	return p.tokens.Verify(token)
}

// HomePath is where a signed-in user lands.
func HomePath(role core.Role) string {
	if role == core.RoleCreator {
		return CreatorHome
	}
	return ManagerHome
}
