package domain

import "time"

// Role is the coarse position a user holds on the platform.
type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleApprover Role = "approver"
	RoleStaff    Role = "staff"
)

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleApprover, RoleStaff:
		return true
	}
	return false
}

type User struct {
	ID            string
	Username      string
	PreferredName string
	PasswordHash  string // argon2 encoded
	Role          Role
	IsActive      bool
	IsAdmin       bool
	IsRootAdmin   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserFlagsUpdate is a partial update of the authorization-relevant user
// fields. Nil means "leave unchanged".
type UserFlagsUpdate struct {
	Role        *Role
	IsActive    *bool
	IsAdmin     *bool
	IsRootAdmin *bool
}
