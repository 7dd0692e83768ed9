package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// ErrInvalidToken is returned when a verified bearer token names no live user.
var ErrInvalidToken = errors.New("invalid authorization token")

// UserLookup is the slice of the user repository hydration needs.
type UserLookup interface {
	GetActiveByID(ctx context.Context, id string) (*models.User, error)
}

// Hydrator turns a verified credential into an Identity.
//
// Return values:
//   - (identity, nil): credential hydrated
//   - (nil, nil): no credential on the request
//   - (nil, error): credential unusable or storage failed
type Hydrator struct {
	users UserLookup
}

// NewHydrator creates a Hydrator backed by users.
func NewHydrator(users UserLookup) *Hydrator {
	return &Hydrator{users: users}
}

// Hydrate loads the user behind a bearer credential. Other schemes pass through with only the scheme recorded.
func (h *Hydrator) Hydrate(ctx context.Context, state *auth.AuthState) (*auth.Identity, error) {
	if state == nil {
		return nil, nil
	}
	if state.Type != auth.SchemeBearer {
		return &auth.Identity{Scheme: state.Type}, nil
	}

	user, err := h.users.GetActiveByID(ctx, state.Payload.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load bearer user: %w", err)
	}
	return &auth.Identity{Scheme: state.Type, User: user}, nil
}

// IdentityHydration runs after AuthStrategy. A bearer token for a missing or deleted
// user ends the request with 401 before it reaches the API.
func IdentityHydration(h *Hydrator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, err := h.Hydrate(ctx, auth.StateFromContext(ctx))
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
					return
				}
				log.Printf("ERROR: hydrate identity for %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "authentication error", http.StatusInternalServerError)
				return
			}
			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, *identity)))
		})
	}
}
