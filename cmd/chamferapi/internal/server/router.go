package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	chamfermiddleware "github.com/seemspyo/chamfer/cmd/chamferapi/internal/middleware"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/telemetry"
)

// RouterOptions controls the construction of the chamfer HTTP router.
// GraphQL, Strategy and Hydrator are required; everything else is optional.
type RouterOptions struct {
	GraphQL     http.Handler
	GraphQLPath string
	Strategy    *auth.Strategy
	Hydrator    *chamfermiddleware.Hydrator
	Cipher      *auth.Cipher

	// WhiteList holds allowed origins. Empty or containing "*" allows any origin.
	WhiteList []string

	Metrics        *telemetry.ServerMetrics
	MetricsHandler http.Handler
	HealthHandler  http.HandlerFunc
	Middleware     []func(http.Handler) http.Handler
}

// CORSOptions returns the CORS policy for the given white list. Credentials are
// always allowed since the API authenticates with a cookie.
func CORSOptions(whiteList []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{auth.CredentialKey, "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if anyOrigin(whiteList) {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		opts.AllowedOrigins = whiteList
	}
	return opts
}

func anyOrigin(whiteList []string) bool {
	for _, origin := range whiteList {
		if origin == "*" {
			return true
		}
	}
	return len(whiteList) == 0
}

// originGuard answers 401 to browser requests from origins outside the white list.
// Requests without an Origin header pass.
func originGuard(whiteList []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(whiteList))
	for _, origin := range whiteList {
		allowed[origin] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := allowed[origin]; !ok {
					http.Error(w, "NOT_ALLOWED", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, the CORS policy and
// the GraphQL endpoint behind credential resolution and identity hydration.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(cors.Handler(CORSOptions(opts.WhiteList)))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	path := opts.GraphQLPath
	if path == "" {
		path = "/graphql"
	}
	gql := r.With(
		chamfermiddleware.AuthStrategy(opts.Strategy),
		chamfermiddleware.IdentityHydration(opts.Hydrator),
	)
	if !anyOrigin(opts.WhiteList) {
		gql = gql.With(originGuard(opts.WhiteList))
	}
	gql.Get(path, opts.GraphQL.ServeHTTP)
	gql.Post(path, opts.GraphQL.ServeHTTP)

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.Cipher != nil {
		r.Get("/.well-known/jwks.json", HandleJWKS(opts.Cipher))
	}
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}

	return r
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over cleartext.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
