// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// Role is the closed set of authorization levels an account can hold.
// The zero value is not a valid role; use [ParseRole] on untrusted input.
type Role string

const (
	// Default role for registered users
	RoleUser Role = "user"

	// May edit or remove any review or comment
	RoleModerator Role = "moderator"

	// Moderator rights plus catalog and user management
	RoleAdmin Role = "admin"
)

// ParseRole converts a stored or transmitted string into a [Role].
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r.level() > 0
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
// Unknown roles never satisfy any target.
func (r Role) AtLeast(target Role) bool {
	return r.Valid() && r.level() >= target.level()
}

// IsStaff reports whether r may act on content authored by someone else.
func (r Role) IsStaff() bool {
	switch r {
	case RoleModerator, RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
