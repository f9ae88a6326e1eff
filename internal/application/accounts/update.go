package accounts

import (
	"context"
	"strings"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// UpdateInput carries the fields to change; nil leaves a field untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

type updatePlan struct {
	fields   []policy.Field
	name     *string
	email    *string
	password *string
	role     *domain.Role
}

func (in UpdateInput) plan() (updatePlan, error) {
	var pl updatePlan
	if in.Name == nil && in.Email == nil && in.Password == nil && in.Role == nil {
		return pl, domain.ErrNoFieldsToUpdate()
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return pl, domain.ErrInvalidField("name", "must not be empty")
		}
		pl.name = &v
		pl.fields = append(pl.fields, policy.FieldName)
	}
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		if v == "" {
			return pl, domain.ErrInvalidField("email", "must not be empty")
		}
		pl.email = &v
		pl.fields = append(pl.fields, policy.FieldEmail)
	}
	if in.Password != nil {
		if *in.Password == "" {
			return pl, domain.ErrInvalidField("password", "must not be empty")
		}
		if len(*in.Password) > maxPasswordBytes {
			return pl, errPasswordTooLong()
		}
		pl.password = in.Password
		pl.fields = append(pl.fields, policy.FieldPassword)
	}
	if in.Role != nil {
		r, err := domain.ParseRole(*in.Role)
		if err != nil {
			return pl, err
		}
		pl.role = &r
		pl.fields = append(pl.fields, policy.FieldRole)
	}
	return pl, nil
}

// UpdateAccount applies the supplied fields to targetID on behalf of p.
func (s *Service) UpdateAccount(ctx context.Context, p Principal, targetID string, in UpdateInput) (AccountView, error) {
	if err := requirePrincipal(p); err != nil {
		return AccountView{}, err
	}
	pl, err := in.plan()
	if err != nil {
		return AccountView{}, err
	}

	target, err := s.findByID(ctx, targetID)
	if err != nil {
		return AccountView{}, err
	}
	targetRole := domain.ResolveRole(target)

	mi := policy.ModifyInput{
		ActorID:    p.AccountID,
		ActorRole:  p.Role,
		TargetID:   target.ID,
		TargetRole: targetRole,
		Fields:     pl.fields,
	}
	demotes := false
	if pl.role != nil {
		mi.NewRole = *pl.role
		demotes = targetRole == domain.RoleSuperAdmin && *pl.role != domain.RoleSuperAdmin
	}
	if demotes {
		if mi.SuperAdminCount, err = s.countSuperAdmins(ctx); err != nil {
			return AccountView{}, err
		}
	}
	if d := s.policy.CanModify(mi); !d.Allowed {
		return AccountView{}, d.Err()
	}

	patch := domain.AccountPatch{Name: pl.name, Email: pl.email, Role: pl.role}

	if pl.email != nil && *pl.email != target.Email {
		fctx, cancel := s.withTimeout(ctx)
		other, err := s.store.FindByEmail(fctx, *pl.email)
		cancel()
		switch {
		case err == nil && other.ID != target.ID:
			return AccountView{}, domain.ErrEmailAlreadyExists()
		case err != nil && !domain.Is(err, "account_not_found"):
			return AccountView{}, storeErr(err)
		}
	}

	if pl.password != nil {
		hash, err := s.hasher.Hash(*pl.password)
		if err != nil {
			return AccountView{}, err
		}
		patch.PasswordHash = &hash
	}

	uctx, cancel := s.withTimeout(ctx)
	err = s.store.Update(uctx, target.ID, patch)
	cancel()
	if err != nil {
		return AccountView{}, storeErr(err)
	}

	if demotes {
		if err := s.guardLastSuperAdmin(ctx, target, patch); err != nil {
			return AccountView{}, err
		}
	}

	updated, err := s.findByID(ctx, target.ID)
	if err != nil {
		return AccountView{}, err
	}

	logger.WithCtx(ctx).Info().
		Str("actor_id", p.AccountID).
		Str("account_id", target.ID).
		Strs("fields", fieldNames(pl.fields)).
		Msg("account updated")

	s.publish(ctx, AccountEvent{Type: EventAccountUpdated, AccountID: target.ID, ActorID: p.AccountID, Role: domain.ResolveRole(updated)})
	return toView(updated), nil
}

// guardLastSuperAdmin re-checks after a demotion. Two SuperAdmins demoting
// each other concurrently can both pass the policy check; the one that finds
// nobody left puts back every field its patch touched and reports the
// conflict, so a rejected update leaves nothing behind.
func (s *Service) guardLastSuperAdmin(ctx context.Context, target domain.Account, applied domain.AccountPatch) error {
	n, err := s.countSuperAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	uctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.Update(uctx, target.ID, revertPatch(target, applied)); err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("account_id", target.ID).Msg("failed to restore last SuperAdmin")
		return storeErr(err)
	}
	return domain.ErrLastSuperAdminProtected(string(policy.RuleLastSuperAdmin))
}

// revertPatch undoes applied using the pre-update snapshot. The role goes
// back to SuperAdmin even when the snapshot only carried the legacy flag.
func revertPatch(before domain.Account, applied domain.AccountPatch) domain.AccountPatch {
	role := domain.RoleSuperAdmin
	p := domain.AccountPatch{Role: &role}
	if applied.Name != nil {
		p.Name = &before.Name
	}
	if applied.Email != nil {
		p.Email = &before.Email
	}
	if applied.PasswordHash != nil {
		p.PasswordHash = &before.PasswordHash
	}
	return p
}

func fieldNames(fs []policy.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
