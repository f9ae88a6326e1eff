package accounts

import (
	"context"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// DeleteAccount removes targetID on behalf of p.
func (s *Service) DeleteAccount(ctx context.Context, p Principal, targetID string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}

	target, err := s.findByID(ctx, targetID)
	if err != nil {
		return err
	}
	targetRole := domain.ResolveRole(target)

	di := policy.DeleteInput{
		ActorID:    p.AccountID,
		ActorRole:  p.Role,
		TargetID:   target.ID,
		TargetRole: targetRole,
	}
	if targetRole == domain.RoleSuperAdmin {
		if di.SuperAdminCount, err = s.countSuperAdmins(ctx); err != nil {
			return err
		}
	}
	if d := s.policy.CanDelete(di); !d.Allowed {
		return d.Err()
	}

	dctx, cancel := s.withTimeout(ctx)
	err = s.store.Delete(dctx, target.ID)
	cancel()
	if err != nil {
		return storeErr(err)
	}
	if targetRole == domain.RoleSuperAdmin {
		s.checkSuperAdminsRemain(ctx, target.ID)
	}

	logger.WithCtx(ctx).Info().
		Str("actor_id", p.AccountID).
		Str("account_id", target.ID).
		Str("role", targetRole.String()).
		Msg("account deleted")

	s.publish(ctx, AccountEvent{Type: EventAccountDeleted, AccountID: target.ID, ActorID: p.AccountID, Role: targetRole})
	return nil
}

// checkSuperAdminsRemain flags the one race a delete cannot undo: two
// SuperAdmins deleting each other at once both pass the count check. The
// store has no conditional delete, so this only reports it.
func (s *Service) checkSuperAdminsRemain(ctx context.Context, deletedID string) {
	n, err := s.countSuperAdmins(ctx)
	if err != nil || n > 0 {
		return
	}
	logger.WithCtx(ctx).Error().
		Str("account_id", deletedID).
		Msg("no SuperAdmin left after delete")
}
