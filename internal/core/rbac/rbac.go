// Package rbac implements the two authorization mechanisms of the directory:
//
//   - a role hierarchy (HasRole / RequireRole), a total order where a higher
//     role satisfies any lower requirement, and
//   - a static per-(resource,action) allow-list (CanAccess), independent of
//     the hierarchy except for an admin bypass.
//
// The two are deliberately separate. A MODERATOR can be granted "update" on
// "users" without inheriting every action a hierarchy comparison would imply.
// Each endpoint picks exactly one mechanism; see the route table in DESIGN.md.
package rbac

import (
	"github.com/userdir/directory-system/internal/core/domain"
)

// unknownRequiredLevel is the level assigned to a required role outside the
// closed set. It is above every real level, so the check always fails.
const unknownRequiredLevel = 999

// permissions is the static allow-list, fixed at process start.
var permissions = map[string]map[string][]domain.Role{
	"users": {
		"read":   {domain.RoleUser, domain.RoleModerator, domain.RoleAdmin},
		"create": {domain.RoleAdmin},
		"update": {domain.RoleModerator, domain.RoleAdmin},
		"delete": {domain.RoleAdmin},
	},
}

// HasRole reports whether actor satisfies the required minimum role.
// Unknown actor roles map to level -1 and unknown required roles to a level
// above ADMIN, so malformed input on either side denies.
func HasRole(actor, required domain.Role) bool {
	requiredLevel := unknownRequiredLevel
	if required.Valid() {
		requiredLevel = required.Level()
	}
	return actor.Level() >= requiredLevel
}

// RequireRole is HasRole for call sites that abort on denial.
func RequireRole(actor, required domain.Role) error {
	if !HasRole(actor, required) {
		return domain.ErrForbidden
	}
	return nil
}

// CanAccess reports whether actor may perform action on resource per the
// allow-list. ADMIN bypasses the table entirely; everything absent from the
// table is denied.
func CanAccess(actor domain.Role, resource, action string) bool {
	if actor == domain.RoleAdmin {
		return true
	}
	for _, allowed := range permissions[resource][action] {
		if actor == allowed {
			return true
		}
	}
	return false
}
