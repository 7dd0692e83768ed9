package auth

import (
	"context"
	"net/http"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// Identity is the hydrated caller of a request.
type Identity struct {
	// Scheme is the lowercased credential scheme, e.g. "bearer".
	Scheme string
	// User is set only for bearer credentials that resolved to a live account.
	User *models.User
}

type stateContextKey struct{}

// WithState stores the resolved credential (possibly nil) on the context.
func WithState(ctx context.Context, state *AuthState) context.Context {
	return context.WithValue(ctx, stateContextKey{}, state)
}

// StateFromContext returns the credential stored by WithState, or nil.
func StateFromContext(ctx context.Context) *AuthState {
	state, _ := ctx.Value(stateContextKey{}).(*AuthState)
	return state
}

type identityContextKey struct{}

// WithIdentity stores the hydrated identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the hydrated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// UserFromContext returns the acting user, or nil for anonymous and non-bearer callers.
func UserFromContext(ctx context.Context) *models.User {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return identity.User
}

type cookieSinkContextKey struct{}

// WithCookieSink exposes the response writer so resolvers can set or clear the credential cookie.
func WithCookieSink(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, cookieSinkContextKey{}, w)
}

// CookieSinkFromContext returns the writer stored by WithCookieSink.
func CookieSinkFromContext(ctx context.Context) (http.ResponseWriter, bool) {
	w, ok := ctx.Value(cookieSinkContextKey{}).(http.ResponseWriter)
	return w, ok
}

type clientIPContextKey struct{}

// WithClientIP records the remote address of the caller.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// ClientIPFromContext returns the address recorded by WithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
