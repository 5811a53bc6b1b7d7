package domain

import "time"

// Role enumerates the three staff roles of the tracker.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOperator  Role = "OPERATOR"
	RoleCounselor Role = "COUNSELOR"
)

// Valid reports whether the role is one of the defined values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleCounselor:
		return true
	}
	return false
}

// User is an authenticated staff member. DepartmentID is set iff the
// role is OPERATOR; admins and counselors carry no department scope.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins the display name parts.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
