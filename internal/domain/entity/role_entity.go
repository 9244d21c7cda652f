package entity

// User roles and statuses are closed sets; anything outside them is invalid input.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

var validRoles = map[string]struct{}{
	RoleUser:      {},
	RoleModerator: {},
	RoleAdmin:     {},
}

var validStatuses = map[string]struct{}{
	StatusActive:    {},
	StatusInactive:  {},
	StatusSuspended: {},
}

func IsValidRole(role string) bool {
	_, ok := validRoles[role]
	return ok
}

func IsValidStatus(status string) bool {
	_, ok := validStatuses[status]
	return ok
}
