package domain

// Role represents user role in the system
type Role string

const (
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// Actor identifies the authenticated caller of a core operation. Repositories
// scope their queries on it: admins see everything, officers see their own
// customers only.
type Actor struct {
	UserID    uint
	OfficerID uint // zero for admins without an officer profile
	Role      Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
