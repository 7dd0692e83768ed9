package auth

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"sort"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
)

//go:embed model.conf
var casbinModelContent string

// anonymousSubject never matches a role policy, only wildcard ones.
const anonymousSubject = ""

// Policies maps an operation name to the roles allowed to run it, or Wildcard.
type Policies map[string][]string

// Gate decides per operation whether the caller on a context may proceed.
type Gate struct {
	enforcer *casbin.SyncedEnforcer
}

// NewGate loads policies into a casbin enforcer built from the embedded model.
func NewGate(policies Policies) (*Gate, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	operations := make([]string, 0, len(policies))
	for op := range policies {
		operations = append(operations, op)
	}
	sort.Strings(operations)

	for _, op := range operations {
		for _, role := range policies[op] {
			if _, err := enforcer.AddPolicy(role, op); err != nil {
				return nil, fmt.Errorf("add policy %s/%s: %w", role, op, err)
			}
		}
	}

	return &Gate{enforcer: enforcer}, nil
}

// Allow returns nil when the caller may run operation and PERMISSION_DENIED otherwise.
// Bearer callers pass on a wildcard or any shared role; every other caller passes on a wildcard only.
func (g *Gate) Allow(ctx context.Context, operation string) error {
	subjects := []string{anonymousSubject}
	if state := StateFromContext(ctx); state != nil && state.Type == SchemeBearer {
		if user := UserFromContext(ctx); user != nil {
			subjects = append(subjects, user.Roles...)
		}
	}

	for _, sub := range subjects {
		ok, err := g.enforcer.Enforce(sub, operation)
		if err != nil {
			log.Printf("ERROR: enforce %s on %s: %v", sub, operation, err)
			return gqlerr.Internal()
		}
		if ok {
			return nil
		}
	}
	return gqlerr.PermissionDenied()
}
