// Package auth resolves who is making a request and guards the routes that
// need a signed-in user or an administrator.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

type identityKey struct{}

// Gate answers the two access questions for one identity. A nil identity is
// an anonymous visitor.
type Gate struct {
	identity *domain.Identity
}

func NewGate(identity *domain.Identity) Gate {
	return Gate{identity: identity}
}

func (g Gate) IsAuthenticated() bool {
	return g.identity != nil
}

// IsAdmin relies on the role resolved by the provider, never on the email.
func (g Gate) IsAdmin() bool {
	return g.IsAuthenticated() && g.identity.Role == domain.RoleAdmin
}

func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func FromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityKey{}).(*domain.Identity)
	return identity
}

func GateFromContext(ctx context.Context) Gate {
	return NewGate(FromContext(ctx))
}

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Authenticate resolves the bearer token, if any, into an identity on the
// request context. Requests with a missing or rejected token continue as
// anonymous; the guards below decide what they may reach.
func Authenticate(authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GateFromContext(r.Context()).IsAuthenticated() {
			writeGuardError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 to anonymous callers and 403 to signed-in users
// without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gate := GateFromContext(r.Context())
		if !gate.IsAuthenticated() {
			writeGuardError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !gate.IsAdmin() {
			writeGuardError(w, http.StatusForbidden, "access denied: admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func writeGuardError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
