package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// AccountRepo is an in-process domain.AccountStore for dev mode and tests.
// The mutex only emulates the atomicity a real store gives its unique
// index and conditional update; callers never rely on it across calls.
type AccountRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string // email -> accountID
	seq     map[string]int64  // insertion order, breaks CreatedAt ties
	next    int64
	now     func() time.Time
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
		seq:     make(map[string]int64),
		now:     time.Now,
	}
}

// WithClock replaces the timestamp source. Used by tests.
func (r *AccountRepo) WithClock(now func() time.Time) *AccountRepo {
	if now != nil {
		r.now = now
	}
	return r
}

func clone(a domain.Account) domain.Account {
	if a.LegacyIsAdmin != nil {
		v := *a.LegacyIsAdmin
		a.LegacyIsAdmin = &v
	}
	return a
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	return nil
}

func (r *AccountRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return domain.Account{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return clone(a), nil
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return domain.Account{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.TrimSpace(email)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return clone(r.byID[id]), nil
}

func (r *AccountRepo) InsertUnique(ctx context.Context, a domain.Account) (domain.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return domain.Account{}, err
	}
	a.Email = strings.TrimSpace(a.Email)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	if _, exists := r.byID[a.ID]; exists {
		return domain.Account{}, domain.ErrInternal(nil)
	}

	ts := r.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = ts
	}
	a.UpdatedAt = ts

	r.next++
	r.seq[a.ID] = r.next
	r.byID[a.ID] = clone(a)
	r.byEmail[a.Email] = a.ID
	return clone(a), nil
}

// apply mutates a under the write lock. Caller holds r.mu.
func (r *AccountRepo) apply(a domain.Account, p domain.AccountPatch) (domain.Account, error) {
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if owner, taken := r.byEmail[email]; taken && owner != a.ID {
			return domain.Account{}, domain.ErrEmailAlreadyExists()
		}
		delete(r.byEmail, a.Email)
		a.Email = email
		r.byEmail[email] = a.ID
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	a.UpdatedAt = r.now()
	r.byID[a.ID] = a
	return a, nil
}

func (r *AccountRepo) UpdateConditional(ctx context.Context, id string, cond domain.Condition, p domain.AccountPatch) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	switch cond {
	case domain.CondRoleAbsent:
		if a.Migrated() {
			return 0, nil
		}
	default:
		return 0, domain.ErrInternal(nil)
	}
	if _, err := r.apply(a, p); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *AccountRepo) Update(ctx context.Context, id string, p domain.AccountPatch) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	_, err := r.apply(a, p)
	return err
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	delete(r.byEmail, a.Email)
	delete(r.byID, id)
	delete(r.seq, id)
	return nil
}

func (r *AccountRepo) Count(ctx context.Context, f domain.AccountFilter) (int, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if f.Matches(a) {
			n++
		}
	}
	return n, nil
}

func (r *AccountRepo) Scan(ctx context.Context, f domain.AccountFilter) ([]domain.Account, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.Matches(a) {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}
