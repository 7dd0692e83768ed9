// Package graph serves the chamfer GraphQL API: the schema, its resolvers and
// the HTTP transport in front of them.
package graph

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/ratelimit"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/content"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/upload"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/users"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/telemetry"
)

//go:embed schema.graphql
var schemaSDL string

// Pinger reports database reachability. *bun.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires the services the resolvers delegate to.
type Options struct {
	Version  string
	Cipher   *auth.Cipher
	Strategy *auth.Strategy
	Gate     *auth.Gate
	DB       Pinger

	Users   *users.Service
	Content *content.Service
	Uploads *upload.Service

	// SignInLimiter throttles signIn per client address. Nil disables throttling.
	SignInLimiter *ratelimit.Limiter
	// Collector and AuthMetrics are optional.
	Collector   *telemetry.Collector
	AuthMetrics *telemetry.AuthMetrics
}

// Resolver is the root of both Query and Mutation.
type Resolver struct {
	opts Options
}

// NewResolver checks the required dependencies and returns the root resolver.
func NewResolver(opts Options) (*Resolver, error) {
	switch {
	case opts.Cipher == nil:
		return nil, fmt.Errorf("resolver requires a cipher")
	case opts.Strategy == nil:
		return nil, fmt.Errorf("resolver requires an auth strategy")
	case opts.Gate == nil:
		return nil, fmt.Errorf("resolver requires a gate")
	case opts.Users == nil || opts.Content == nil || opts.Uploads == nil:
		return nil, fmt.Errorf("resolver requires users, content and upload services")
	}
	return &Resolver{opts: opts}, nil
}

// NewSchema parses the embedded SDL against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(12),
		graphql.UseStringDescriptions(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return schema, nil
}

// allow runs the gate for operation and counts refusals.
func (r *Resolver) allow(ctx context.Context, operation string) error {
	err := r.opts.Gate.Allow(ctx, operation)
	if err != nil && r.opts.Collector != nil && gqlerr.Is(err, gqlerr.CodePermissionDenied) {
		r.opts.Collector.RecordDenied(operation)
	}
	return err
}

func (r *Resolver) recordSignIn(ctx context.Context, start time.Time, success bool) {
	if r.opts.AuthMetrics == nil {
		return
	}
	r.opts.AuthMetrics.RecordAuth(ctx, "password", success, float64(time.Since(start).Microseconds())/1000)
}
