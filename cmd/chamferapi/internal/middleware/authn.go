package middleware

import (
	"net"
	"net/http"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
)

// AuthStrategy resolves the request credential and stores it, nil or not, on the
// request context together with the response writer used as cookie sink.
// Unusable credentials never fail the request.
func AuthStrategy(strategy *auth.Strategy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithState(r.Context(), strategy.Resolve(r))
			ctx = auth.WithCookieSink(ctx, w)
			ctx = auth.WithClientIP(ctx, clientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP strips the port from RemoteAddr. chi's RealIP runs earlier and rewrites it from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
