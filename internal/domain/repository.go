package domain

import "context"

// AccountFilter narrows Scan and Count. Zero value matches every account.
type AccountFilter struct {
	// RoleAbsent matches only accounts that still use the legacy representation.
	RoleAbsent bool
	// Role matches the resolved role (see ResolveRole), so unmigrated
	// accounts are counted by what they resolve to.
	Role Role
	// ExcludeID drops a single account from the result.
	ExcludeID string
}

// Matches applies the filter to an in-memory account.
func (f AccountFilter) Matches(a Account) bool {
	if f.RoleAbsent && a.Migrated() {
		return false
	}
	if f.Role != "" && ResolveRole(a) != f.Role {
		return false
	}
	if f.ExcludeID != "" && a.ID == f.ExcludeID {
		return false
	}
	return true
}

// Condition is the predicate of a conditional update.
type Condition int

const (
	// CondRoleAbsent applies the patch only while the row has no role yet.
	CondRoleAbsent Condition = iota + 1
)

// AccountPatch lists the fields to change; nil means leave untouched.
type AccountPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

func (p AccountPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil && p.Role == nil
}

// AccountStore is the contract this core requires from the account datastore.
//
// Implementations map a missing row to ErrAccountNotFound, a duplicate email
// to ErrEmailAlreadyExists and timeouts or transient failures to
// ErrStoreUnavailable. Scan returns accounts newest-created first.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	InsertUnique(ctx context.Context, a Account) (Account, error)
	UpdateConditional(ctx context.Context, id string, cond Condition, patch AccountPatch) (int64, error)
	Update(ctx context.Context, id string, patch AccountPatch) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f AccountFilter) (int, error)
	Scan(ctx context.Context, f AccountFilter) ([]Account, error)
}
