// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zerovacancy/zerovacancy/internal/api/response"
	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(token string) (core.User, error)
}

type userKey struct{}

// UserFrom returns the authenticated user stored by BearerAuth.
func UserFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey{}).(core.User)
	return u, ok
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// BearerAuth returns middleware that validates the Authorization header.
// If auth is nil, authentication is disabled.
func BearerAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth if no authenticator configured
			if auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				response.Fail(w, core.ErrUnauthorized)
				return
			}

			user, err := auth.Authenticate(token)
			if err != nil {
				response.Fail(w, core.Classify(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
