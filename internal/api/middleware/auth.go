package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"recipedia/internal/core/auth"
	"recipedia/internal/core/policy"
	"recipedia/internal/core/repository"
)

type contextKey string

const actorKey contextKey = "actor"

// AccessGate resolves the acting identity from the bearer token and
// attaches it to the request context. One implementation serves both
// required and optional routes; in required mode every failure reason
// (missing header, malformed token, bad signature, expired, unknown
// user) produces the same 401 response.
type AccessGate struct {
	tokens *auth.TokenService
	users  repository.UserRepository
}

func NewAccessGate(tokens *auth.TokenService, users repository.UserRepository) *AccessGate {
	return &AccessGate{
		tokens: tokens,
		users:  users,
	}
}

// Require fails the request with 401 unless a valid actor resolves.
func (g *AccessGate) Require(next http.Handler) http.Handler {
	return g.handler(next, true)
}

// Optional resolves the actor when possible and continues as anonymous
// otherwise.
func (g *AccessGate) Optional(next http.Handler) http.Handler {
	return g.handler(next, false)
}

func (g *AccessGate) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := g.resolve(r)
		if !ok && required {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not authorized"})
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve never reports why resolution failed; callers only learn that
// the actor is anonymous.
func (g *AccessGate) resolve(r *http.Request) (policy.Actor, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return policy.Anonymous, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return policy.Anonymous, false
	}

	userID, err := g.tokens.Verify(parts[1])
	if err != nil {
		return policy.Anonymous, false
	}

	user, err := g.users.FindByID(r.Context(), userID)
	if err != nil || user == nil {
		return policy.Anonymous, false
	}

	return policy.NewActor(user), true
}

// ActorFrom returns the actor the gate attached to the request, or the
// anonymous actor when no gate ran.
func ActorFrom(r *http.Request) policy.Actor {
	if actor, ok := r.Context().Value(actorKey).(policy.Actor); ok {
		return actor
	}
	return policy.Anonymous
}
