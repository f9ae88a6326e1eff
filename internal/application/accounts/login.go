package accounts

import (
	"context"
	"strings"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

type LoginResult struct {
	Account AccountView
	Session Session
}

// fallbackDummyHash is a well-formed cost-12 bcrypt hash that matches no
// password. It is used only if hashing the dummy password fails.
const fallbackDummyHash = "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// dummyPasswordHash returns a real hash at the configured cost so that a
// login for an unknown email spends the same time as a wrong password.
func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("account-service-dummy-password")
		if err != nil {
			h = fallbackDummyHash
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Login authenticates by email and password and issues a session claim.
// IMPORTANT: must not leak whether the email exists.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		_ = s.hasher.Verify(password, s.dummyPasswordHash())
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	fctx, cancel := s.withTimeout(ctx)
	a, err := s.store.FindByEmail(fctx, email)
	cancel()
	if err != nil {
		if domain.Is(err, "account_not_found") {
			_ = s.hasher.Verify(password, s.dummyPasswordHash())
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, storeErr(err)
	}

	if !s.hasher.Verify(password, a.PasswordHash) {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	role := domain.ResolveRole(a)
	if !a.Migrated() {
		s.normalizeOnLogin(ctx, a.ID, role)
	}

	sess, err := s.sessions.Issue(a.ID, role)
	if err != nil {
		return LoginResult{}, err
	}

	logger.WithCtx(ctx).Info().
		Str("account_id", a.ID).
		Str("role", role.String()).
		Msg("login succeeded")

	return LoginResult{Account: toView(a), Session: sess}, nil
}

// normalizeOnLogin writes the resolved role for a legacy account. The write
// is a compare-and-set, so losing to the batch normalizer is a no-op, and
// any failure leaves the account readable through ResolveRole.
func (s *Service) normalizeOnLogin(ctx context.Context, id string, role domain.Role) {
	uctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.store.UpdateConditional(uctx, id, domain.CondRoleAbsent, domain.AccountPatch{Role: &role}); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("account_id", id).Msg("legacy role normalization on login failed")
	}
}

// Refresh re-issues a still-valid claim with the same subject and role.
func (s *Service) Refresh(ctx context.Context, token string) (Session, error) {
	sess, err := s.sessions.Refresh(token)
	if err != nil {
		return Session{}, err
	}
	logger.WithCtx(ctx).Debug().Str("account_id", sess.Claims.Subject).Msg("session refreshed")
	return sess, nil
}

// Authenticate turns a bearer token into the explicit principal passed to
// every other gateway operation. The role is the one in the claim.
func (s *Service) Authenticate(token string) (Principal, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return Principal{}, err
	}
	return Principal{AccountID: claims.Subject, Role: claims.Role}, nil
}
