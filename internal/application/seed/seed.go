// Package seed guarantees a fresh deployment is never left without a
// SuperAdmin.
package seed

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// Documented defaults for the bootstrap account. Operators are expected to
// override the password through config or change it right after first login.
const (
	DefaultName     = "Super Admin"
	DefaultEmail    = "admin@example.com"
	DefaultPassword = "admin123"
)

type Hasher interface {
	Hash(password string) (string, error)
}

type DefaultAccount struct {
	Name     string
	Email    string
	Password string
}

func (d DefaultAccount) withDefaults() DefaultAccount {
	if strings.TrimSpace(d.Name) == "" {
		d.Name = DefaultName
	}
	if strings.TrimSpace(d.Email) == "" {
		d.Email = DefaultEmail
	}
	if d.Password == "" {
		d.Password = DefaultPassword
	}
	d.Email = strings.TrimSpace(d.Email)
	return d
}

type Initializer struct {
	store        domain.AccountStore
	hasher       Hasher
	account      DefaultAccount
	storeTimeout time.Duration
}

func NewInitializer(store domain.AccountStore, hasher Hasher, account DefaultAccount, storeTimeout time.Duration) *Initializer {
	return &Initializer{
		store:        store,
		hasher:       hasher,
		account:      account.withDefaults(),
		storeTimeout: storeTimeout,
	}
}

func (i *Initializer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.storeTimeout)
}

// EnsureDefaultAccount creates the default SuperAdmin when the store is empty
// and reports whether it did. Concurrent callers race on the unique email
// index: the loser sees a conflict and returns false without error.
func (i *Initializer) EnsureDefaultAccount(ctx context.Context) (bool, error) {
	cctx, cancel := i.withTimeout(ctx)
	n, err := i.store.Count(cctx, domain.AccountFilter{})
	cancel()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := i.hasher.Hash(i.account.Password)
	if err != nil {
		return false, err
	}

	ictx, cancel := i.withTimeout(ctx)
	defer cancel()
	created, err := i.store.InsertUnique(ictx, domain.Account{
		ID:           uuid.NewString(),
		Name:         i.account.Name,
		Email:        i.account.Email,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
	})
	if err != nil {
		if domain.Is(err, "email_already_exists") {
			logger.WithCtx(ctx).Info().Msg("default account created by another initializer")
			return false, nil
		}
		return false, err
	}

	logger.WithCtx(ctx).Warn().
		Str("account_id", created.ID).
		Str("email", created.Email).
		Msg("created default SuperAdmin account; change its password")
	return true, nil
}
