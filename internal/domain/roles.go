package domain

import "strings"

type Role string

const (
	// Member can sign in and read the account list.
	RoleMember Role = "Member"
	// Admin manages Member accounts.
	RoleAdmin Role = "Admin"
	// SuperAdmin manages every account, including other admins.
	RoleSuperAdmin Role = "SuperAdmin"
)

// legacySuperAdmin is the spelling written by the previous dashboard release.
const legacySuperAdmin = "Super-Admin"

// Roles lists every role from lowest to highest privilege.
var Roles = []Role{RoleMember, RoleAdmin, RoleSuperAdmin}

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin || r == RoleSuperAdmin
}

// Rank: bigger => higher privilege. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleMember:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// ParseRole accepts the canonical role names and the legacy "Super-Admin".
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == legacySuperAdmin {
		return RoleSuperAdmin, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole(s)
	}
	return r, nil
}

func IsValidRole(s string) bool {
	_, err := ParseRole(s)
	return err == nil
}
