package accounts

import (
	"context"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/migration"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// RunRoleMigration triggers the legacy role normalizer. SuperAdmin only.
func (s *Service) RunRoleMigration(ctx context.Context, p Principal) (migration.Report, error) {
	if err := requirePrincipal(p); err != nil {
		return migration.Report{}, err
	}
	if d := s.policy.CanRunMaintenance(p.Role); !d.Allowed {
		return migration.Report{}, d.Err()
	}
	if s.migrations == nil {
		return migration.Report{}, domain.ErrInternal(nil)
	}

	logger.WithCtx(ctx).Info().Str("actor_id", p.AccountID).Msg("role migration requested")
	return s.migrations.Run(ctx)
}
