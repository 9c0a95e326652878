package domain

// Role enumerates account roles ordered by privilege.
type Role string

const (
	RolePartiallyLoggedIn Role = "PARTIALLY_LOGGED_IN"
	RoleUser              Role = "USER"
	RoleSupportModerator  Role = "SUPPORT_MODERATOR"
	RoleAdmin             Role = "ADMIN"
	RoleRootAdmin         Role = "ROOT_ADMIN"
)

// roleOrdinals is the single source of truth for the role order.
// Adding a role means adding exactly one entry here.
var roleOrdinals = map[Role]int{
	RolePartiallyLoggedIn: 1,
	RoleUser:              2,
	RoleSupportModerator:  3,
	RoleAdmin:             4,
	RoleRootAdmin:         5,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleOrdinals[r]
	return ok
}

// AtLeast reports whether r ranks greater than or equal to required.
// Unknown roles never satisfy any check.
func (r Role) AtLeast(required Role) bool {
	actor, ok := roleOrdinals[r]
	if !ok {
		return false
	}
	target, ok := roleOrdinals[required]
	if !ok {
		return false
	}
	return actor >= target
}

// Exact reports whether r ranks exactly equal to required.
func (r Role) Exact(required Role) bool {
	actor, ok := roleOrdinals[r]
	if !ok {
		return false
	}
	target, ok := roleOrdinals[required]
	if !ok {
		return false
	}
	return actor == target
}

// CanAssign reports whether an actor may move a target account from its
// current role to a new role. The actor must outrank-or-equal both: this
// blocks promoting anyone above the actor's own rank and blocks touching
// accounts already ranked above the actor.
func (r Role) CanAssign(targetCurrent, targetNew Role) bool {
	return r.AtLeast(targetCurrent) && r.AtLeast(targetNew)
}
