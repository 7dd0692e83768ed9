package auth

import "github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"

// Wildcard in an allow-list admits every caller, authenticated or not.
const Wildcard = "*"

// SchemeBearer is the only scheme that carries a user identity.
const SchemeBearer = "bearer"

var (
	// AdminUsers is the admin tier.
	AdminUsers = []string{models.RoleDeus, models.RoleAdmin}

	// AllUsers admits any authenticated user.
	AllUsers = []string{models.RoleCommon, models.RoleDeus, models.RoleAdmin}

	// Everyone admits anonymous callers too.
	Everyone = []string{Wildcard}
)

// IsAdmin reports whether u belongs to the admin tier.
func IsAdmin(u *models.User) bool {
	return u.HasAnyRole(AdminUsers...)
}
