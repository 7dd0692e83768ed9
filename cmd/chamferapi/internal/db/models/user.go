package models

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/bunx"
)

// Role is a privilege tier held by a user.
type Role = string

const (
	RoleCommon Role = "common"
	RoleAdmin  Role = "admin"
	RoleDeus   Role = "deus"
)

// KnownRoles lists every role in declaration order.
var KnownRoles = []Role{RoleCommon, RoleDeus, RoleAdmin}

// Provider identifies how a user signs in.
type Provider int

const (
	ProviderEmail Provider = 0
)

// String returns the GraphQL enum name of the provider.
func (p Provider) String() string {
	switch p {
	case ProviderEmail:
		return "email"
	default:
		return fmt.Sprintf("provider(%d)", int(p))
	}
}

// User is an account. Rows are never removed: deletion sets Deleted and
// rewrites Email and Username into tombstones.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       string     `bun:"id,pk,type:uuid" json:"id"`
	Email    string     `bun:"email,notnull" json:"email"`
	Username string     `bun:"username,notnull" json:"username"`
	Password *string    `bun:"password" json:"password"` // HMAC digest, never exposed
	Provider Provider   `bun:"provider,notnull,default:0" json:"provider"`
	Roles    StringList `bun:"roles,type:jsonb,notnull" json:"roles"`
	JoinedAt time.Time  `bun:"joined_at,notnull,default:current_timestamp" json:"joinedAt"`
	Deleted  bool       `bun:"deleted,notnull,default:false" json:"deleted"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

// BeforeAppendModel fills generated columns on insert and validates before persisting.
func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if u.ID == "" {
			u.ID = bunx.NewUUIDv7()
		}
		if u.JoinedAt.IsZero() {
			u.JoinedAt = time.Now().UTC()
		}
	}
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		return u.Validate()
	}
	return nil
}

// Validate checks column constraints. Tombstoned rows skip the email format rule.
func (u *User) Validate() error {
	emailRules := []validation.Rule{validation.Required, validation.Length(1, 320)}
	if !u.Deleted {
		emailRules = append(emailRules, is.Email)
	}
	return validation.ValidateStruct(u,
		validation.Field(&u.Email, emailRules...),
		validation.Field(&u.Username, validation.Required, validation.Length(1, 320)),
		validation.Field(&u.Password, validation.Length(0, 1024)),
		validation.Field(&u.Provider, validation.In(ProviderEmail)),
		validation.Field(&u.Roles, validation.By(knownRoles)),
	)
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Roles.Contains(role)
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

func knownRoles(value interface{}) error {
	roles, ok := value.(StringList)
	if !ok {
		return fmt.Errorf("must be a list of roles")
	}
	for _, r := range roles {
		if !isKnownRole(r) {
			return fmt.Errorf("unknown role %q", r)
		}
	}
	return nil
}

func isKnownRole(r string) bool {
	for _, known := range KnownRoles {
		if r == known {
			return true
		}
	}
	return false
}
