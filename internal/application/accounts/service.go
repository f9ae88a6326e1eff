package accounts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// DefaultStoreTimeout bounds every store call when config does not.
const DefaultStoreTimeout = 3 * time.Second

// Service is the account mutation gateway. It composes the policy engine,
// credential hashing, session claims and the store per operation. It holds
// no per-request state.
type Service struct {
	store      Store
	hasher     PasswordHasher
	sessions   SessionIssuer
	policy     *policy.Engine
	pub        EventPublisher
	migrations MigrationRunner

	storeTimeout time.Duration
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Config struct {
	StoreTimeout time.Duration
}

func NewService(
	store Store,
	hasher PasswordHasher,
	sessions SessionIssuer,
	engine *policy.Engine,
	pub EventPublisher,
	migrations MigrationRunner,
	cfg Config,
) *Service {
	if engine == nil {
		engine = policy.New(policy.Options{})
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Service{
		store:        store,
		hasher:       hasher,
		sessions:     sessions,
		policy:       engine,
		pub:          pub,
		migrations:   migrations,
		storeTimeout: timeout,
		now:          time.Now,
	}
}

// WithClock replaces the clock used for event timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// AccountView is an account as returned to callers: never carries the hash,
// and the role is always resolved.
type AccountView struct {
	ID        string
	Name      string
	Email     string
	Role      domain.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func toView(a domain.Account) AccountView {
	return AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      domain.ResolveRole(a),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// storeErr normalizes store failures: domain errors pass through, deadlines
// and cancellations become retryable, anything else is internal.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrStoreUnavailable(err)
	}
	return domain.ErrInternal(err)
}

func requirePrincipal(p Principal) error {
	if p.AccountID == "" || !p.Role.Valid() {
		return domain.ErrTokenInvalid()
	}
	return nil
}

func (s *Service) findByID(ctx context.Context, id string) (domain.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	a, err := s.store.FindByID(ctx, id)
	return a, storeErr(err)
}

func (s *Service) countSuperAdmins(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	n, err := s.store.Count(ctx, domain.AccountFilter{Role: domain.RoleSuperAdmin})
	return n, storeErr(err)
}

// publish is best effort: a lost notification never fails the mutation.
func (s *Service) publish(ctx context.Context, evt AccountEvent) {
	if s.pub == nil {
		return
	}
	evt.At = s.now().UTC()
	if err := s.pub.PublishAccountEvent(ctx, evt); err != nil {
		logger.WithCtx(ctx).Warn().
			Err(err).
			Str("event", string(evt.Type)).
			Str("account_id", evt.AccountID).
			Msg("account event publish failed")
	}
}
