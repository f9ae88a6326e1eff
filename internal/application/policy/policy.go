// Package policy decides who may create, modify, delete and list accounts.
//
// Every decision point is an ordered list of deny conditions. The first
// condition that matches wins and its reason is returned; a request is only
// allowed when no condition matches. The engine performs no I/O: callers
// supply everything it needs, including the current SuperAdmin count.
package policy

import (
	"slices"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// Rule names the deny condition that fired. The string is the operator-facing reason.
type Rule string

const (
	RuleSelfModification  Rule = "self-modification"
	RuleInsufficientRole  Rule = "insufficient role"
	RuleLastSuperAdmin    Rule = "last SuperAdmin"
	RuleRoleNotAssignable Rule = "role not assignable"
)

// Decision is the transient allow/deny outcome for one request.
type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Rule) Decision { return Decision{Rule: r, Reason: string(r)} }

// Err converts a denial into the domain error surfaced to callers.
// Last-SuperAdmin protection is a conflict with system state; everything
// else is a plain forbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Rule == RuleLastSuperAdmin {
		return domain.ErrLastSuperAdminProtected(d.Reason)
	}
	return domain.ErrPolicyDenied(d.Reason)
}

// Field is an account attribute a modification may touch.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
	FieldRole     Field = "role"
)

type Options struct {
	// AdminCanCreateAdmin lets an Admin create other Admins. Off by default:
	// Admins may only create Members.
	AdminCanCreateAdmin bool
}

type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// check is one deny condition; it reports the rule when it matches.
type check func() (Rule, bool)

func evaluate(checks ...check) Decision {
	for _, c := range checks {
		if r, denied := c(); denied {
			return deny(r)
		}
	}
	return allow()
}

func actorIsPrivileged(actor domain.Role) check {
	return func() (Rule, bool) {
		return RuleInsufficientRole, !actor.AtLeast(domain.RoleAdmin)
	}
}

// CanCreate decides whether actor may create an account holding requested.
func (e *Engine) CanCreate(actor, requested domain.Role) Decision {
	return evaluate(
		actorIsPrivileged(actor),
		func() (Rule, bool) {
			return RuleRoleNotAssignable, !requested.Valid()
		},
		func() (Rule, bool) {
			if actor != domain.RoleAdmin {
				return "", false
			}
			if requested == domain.RoleMember {
				return "", false
			}
			if requested == domain.RoleAdmin && e.opts.AdminCanCreateAdmin {
				return "", false
			}
			return RuleRoleNotAssignable, true
		},
	)
}

// ModifyInput describes an update request against an existing account.
type ModifyInput struct {
	ActorID    string
	ActorRole  domain.Role
	TargetID   string
	TargetRole domain.Role
	Fields     []Field
	// NewRole is only consulted when Fields contains FieldRole.
	NewRole domain.Role
	// SuperAdminCount is the number of accounts currently resolving to
	// SuperAdmin. Only needed when a SuperAdmin target is being demoted.
	SuperAdminCount int
}

func (in ModifyInput) changesRole() bool {
	return slices.Contains(in.Fields, FieldRole)
}

func (in ModifyInput) demotesSuperAdmin() bool {
	return in.changesRole() &&
		in.TargetRole == domain.RoleSuperAdmin &&
		in.NewRole != domain.RoleSuperAdmin
}

// CanModify evaluates, in order:
//  1. actor below Admin
//  2. SuperAdmin demoting the last SuperAdmin
//  3. actor is the target
//  4. Admin touching an Admin or SuperAdmin
//  5. role change to something the actor may not grant
func (e *Engine) CanModify(in ModifyInput) Decision {
	return evaluate(
		actorIsPrivileged(in.ActorRole),
		func() (Rule, bool) {
			return RuleLastSuperAdmin, in.ActorRole == domain.RoleSuperAdmin &&
				in.demotesSuperAdmin() && in.SuperAdminCount <= 1
		},
		func() (Rule, bool) {
			return RuleSelfModification, in.ActorID == in.TargetID
		},
		func() (Rule, bool) {
			return RuleInsufficientRole, in.ActorRole == domain.RoleAdmin &&
				in.TargetRole.AtLeast(domain.RoleAdmin)
		},
		func() (Rule, bool) {
			if !in.changesRole() {
				return "", false
			}
			if !in.NewRole.Valid() {
				return RuleRoleNotAssignable, true
			}
			return RuleRoleNotAssignable, in.ActorRole == domain.RoleAdmin &&
				in.NewRole != domain.RoleMember
		},
	)
}

// DeleteInput describes a delete request against an existing account.
type DeleteInput struct {
	ActorID         string
	ActorRole       domain.Role
	TargetID        string
	TargetRole      domain.Role
	SuperAdminCount int
}

// CanDelete applies the CanModify actor/target restrictions and protects the
// last SuperAdmin.
func (e *Engine) CanDelete(in DeleteInput) Decision {
	return evaluate(
		actorIsPrivileged(in.ActorRole),
		func() (Rule, bool) {
			return RuleLastSuperAdmin, in.ActorRole == domain.RoleSuperAdmin &&
				in.TargetRole == domain.RoleSuperAdmin && in.SuperAdminCount <= 1
		},
		func() (Rule, bool) {
			return RuleSelfModification, in.ActorID == in.TargetID
		},
		func() (Rule, bool) {
			return RuleInsufficientRole, in.ActorRole == domain.RoleAdmin &&
				in.TargetRole.AtLeast(domain.RoleAdmin)
		},
	)
}

// CanList allows any authenticated role. The caller's own account is always
// excluded from the result by the gateway.
func (e *Engine) CanList(actor domain.Role) Decision {
	return evaluate(func() (Rule, bool) {
		return RuleInsufficientRole, !actor.Valid()
	})
}

// CanRunMaintenance gates out-of-band jobs such as the role migration.
func (e *Engine) CanRunMaintenance(actor domain.Role) Decision {
	return evaluate(func() (Rule, bool) {
		return RuleInsufficientRole, actor != domain.RoleSuperAdmin
	})
}
