package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
)

// HandleJWKS publishes the token signing key so other services can verify issued tokens.
func HandleJWKS(cipher *auth.Cipher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		if err := json.NewEncoder(w).Encode(cipher.PublicJWKS()); err != nil {
			log.Printf("ERROR: encode jwks: %v", err)
		}
	}
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uploads  bool   `json:"uploads_enabled"`
}

// HandleHealth reports 503 while the database is unreachable.
func HandleHealth(db Pinger, uploadsEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "ok", Database: "ok", Uploads: uploadsEnabled}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			log.Printf("WARNING: health check database ping failed: %v", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("ERROR: encode health response: %v", err)
		}
	}
}
