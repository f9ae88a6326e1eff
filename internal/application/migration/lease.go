package migration

import (
	"context"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// LeaseKey names the cross-instance migration lease.
const LeaseKey = "account-service:migration:roles"

// Lease is a best-effort mutual exclusion across instances. Correctness
// never depends on it; it only keeps two instances from scanning at once.
type Lease interface {
	// Acquire returns ok=false when another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Runner wraps a Normalizer with an optional lease.
type Runner struct {
	normalizer *Normalizer
	lease      Lease
	ttl        time.Duration
}

func NewRunner(n *Normalizer, lease Lease, ttl time.Duration) *Runner {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Runner{normalizer: n, lease: lease, ttl: ttl}
}

// Run migrates under the lease when one is configured. A held lease is
// reported as ErrMigrationRunning. If the lease store itself is down the
// batch still runs, since the conditional update keeps it safe.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if r.lease == nil {
		return r.normalizer.MigrateAll(ctx)
	}

	release, ok, err := r.lease.Acquire(ctx, LeaseKey, r.ttl)
	switch {
	case err != nil:
		logger.WithCtx(ctx).Warn().Err(err).Msg("migration lease unavailable, running without it")
		return r.normalizer.MigrateAll(ctx)
	case !ok:
		return Report{}, domain.ErrMigrationRunning()
	}

	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			logger.WithCtx(ctx).Warn().Err(rerr).Msg("migration lease release failed")
		}
	}()
	return r.normalizer.MigrateAll(ctx)
}
