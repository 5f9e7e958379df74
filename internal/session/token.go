package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

const DefaultTTL = 24 * time.Hour

// Claims is the JWT payload for a session token.
type Claims struct {
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
	Role  core.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer requires a non-empty secret.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("session secret is required"))
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if issuer == "" {
		issuer = "zerovacancy"
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for user and returns it with its expiry.
func (t *TokenIssuer) Issue(user core.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks signature, issuer and expiry and returns the token's user.
func (t *TokenIssuer) Verify(token string) (core.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return core.User{}, mapJWTError(err)
	}

	return core.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return &core.Error{
			Kind:    core.KindAuth,
			Code:    core.ErrTokenInvalid.Code,
			Message: "Your session has expired. Please sign in again.",
			Status:  core.ErrTokenInvalid.Status,
			Cause:   err,
		}
	}
	return core.WrapError(core.ErrTokenInvalid, err)
}
