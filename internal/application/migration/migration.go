// Package migration normalizes accounts from the legacy admin flag to the
// role enum.
//
// Reads never depend on it: domain.ResolveRole gives the same answer before
// and after a record is migrated. The batch only makes the stored shape
// uniform, and every write is a compare-and-set on "role still absent", so
// any number of runners may overlap with each other and with live traffic.
package migration

import (
	"context"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// Failure is a single record the batch could not migrate.
type Failure struct {
	ID  string
	Err error
}

// Report summarizes one MigrateAll pass.
type Report struct {
	// Scanned is the number of legacy accounts found by the scan.
	Scanned int
	// Migrated counts records this runner actually wrote.
	Migrated int
	// Skipped counts records another writer migrated first.
	Skipped  int
	Failures []Failure
}

type Normalizer struct {
	store        domain.AccountStore
	storeTimeout time.Duration
}

func NewNormalizer(store domain.AccountStore, storeTimeout time.Duration) *Normalizer {
	return &Normalizer{store: store, storeTimeout: storeTimeout}
}

func (n *Normalizer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.storeTimeout)
}

// MigrateAll scans accounts lacking a role and sets the resolved role on each
// one that is still unmigrated. Only a failed scan is returned as an error;
// per-record failures are collected in the report.
func (n *Normalizer) MigrateAll(ctx context.Context) (Report, error) {
	sctx, cancel := n.withTimeout(ctx)
	legacy, err := n.store.Scan(sctx, domain.AccountFilter{RoleAbsent: true})
	cancel()
	if err != nil {
		return Report{}, err
	}

	rep := Report{Scanned: len(legacy)}
	for _, a := range legacy {
		if err := ctx.Err(); err != nil {
			rep.Failures = append(rep.Failures, Failure{ID: a.ID, Err: domain.ErrStoreUnavailable(err)})
			continue
		}

		role := domain.ResolveRole(a)
		uctx, cancel := n.withTimeout(ctx)
		updated, err := n.store.UpdateConditional(uctx, a.ID, domain.CondRoleAbsent, domain.AccountPatch{Role: &role})
		cancel()

		switch {
		case err != nil:
			rep.Failures = append(rep.Failures, Failure{ID: a.ID, Err: err})
		case updated == 0:
			rep.Skipped++
		default:
			rep.Migrated++
		}
	}

	l := logger.WithCtx(ctx)
	ev := l.Info()
	if len(rep.Failures) > 0 {
		ev = l.Warn()
	}
	ev.Int("scanned", rep.Scanned).
		Int("migrated", rep.Migrated).
		Int("skipped", rep.Skipped).
		Int("failed", len(rep.Failures)).
		Msg("role migration finished")

	return rep, nil
}
