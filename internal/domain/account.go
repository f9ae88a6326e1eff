package domain

import "time"

// Account is a persisted identity with credentials and a role.
//
// Rows written before the role enum existed carry LegacyIsAdmin and an empty
// Role. Once Role is set it is authoritative and LegacyIsAdmin is ignored.
type Account struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	LegacyIsAdmin *bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Migrated reports whether the account already stores a role.
func (a Account) Migrated() bool {
	return a.Role != ""
}

// ResolveRole maps either representation to exactly one role. It has no side
// effects and must be evaluated on every read: an account that a concurrent
// migration has not reached yet still resolves correctly.
func ResolveRole(a Account) Role {
	if a.Role.Valid() {
		return a.Role
	}
	if a.Role == "" && a.LegacyIsAdmin != nil && *a.LegacyIsAdmin {
		return RoleSuperAdmin
	}
	if a.Role != "" {
		// Stored value outside the enum (hand edits, legacy spellings).
		if r, err := ParseRole(string(a.Role)); err == nil {
			return r
		}
	}
	return RoleMember
}
