package domain

// Role is an ordered permission tier. The set is closed: every stored role is
// one of the three constants below.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// roleLevels defines the total order USER < MODERATOR < ADMIN.
var roleLevels = map[Role]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
}

// Level returns the hierarchy level of r, or -1 for an unknown role so that
// an unrecognized actor never satisfies any requirement.
func (r Role) Level() int {
	lvl, ok := roleLevels[r]
	if !ok {
		return -1
	}
	return lvl
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Roles lists the closed set in hierarchy order.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}
