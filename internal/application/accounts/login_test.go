package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

func TestLogin_Success_IssuesSessionWithResolvedRole(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.seedTeam(t)

	res, err := h.svc.Login(context.Background(), "  ad@example.com ", "pw")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Account.ID != "ad" || res.Account.Role != domain.RoleAdmin {
		t.Fatalf("unexpected account: %+v", res.Account)
	}
	if res.Session.Token != "sess.ad.Admin" {
		t.Fatalf("unexpected token %q", res.Session.Token)
	}
}

func TestLogin_UnknownEmailAndWrongPassword_SameError(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.seedTeam(t)

	_, errUnknown := h.svc.Login(context.Background(), "nobody@example.com", "pw")
	_, errWrong := h.svc.Login(context.Background(), "ad@example.com", "nope")

	requireErrCode(t, errUnknown, "invalid_credentials")
	requireErrCode(t, errWrong, "invalid_credentials")
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errUnknown, errWrong)
	}
	if h.hasher.verifies != 2 {
		t.Fatalf("expected a password comparison on both paths, got %d", h.hasher.verifies)
	}
}

func TestLogin_UnknownEmail_ComparesEvenWhenDummyHashFails(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.hasher.hashErr = errors.New("entropy exhausted")

	_, err := h.svc.Login(context.Background(), "nobody@example.com", "pw")
	requireErrCode(t, err, "invalid_credentials")
	if h.hasher.verifies != 1 || h.hasher.lastHash != fallbackDummyHash {
		t.Fatalf("expected a comparison against the fallback hash, got %d against %q", h.hasher.verifies, h.hasher.lastHash)
	}
}

func TestLogin_EmptyInput_InvalidCredentials(t *testing.T) {
	h := newHarness(t, policy.Options{})

	_, err := h.svc.Login(context.Background(), "", "pw")
	requireErrCode(t, err, "invalid_credentials")
	_, err = h.svc.Login(context.Background(), "a@example.com", "")
	requireErrCode(t, err, "invalid_credentials")
}

func TestLogin_StoreUnavailable_IsRetryable(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.store.findByEmailErr = context.DeadlineExceeded

	_, err := h.svc.Login(context.Background(), "a@example.com", "pw")
	requireKind(t, err, domain.KindInfrastructure)
	if !domain.IsRetryable(err) {
		t.Fatalf("expected retryable error")
	}
}

func TestLogin_LegacyAdmin_ResolvesAndNormalizes(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.put(t, domain.Account{ID: "old", Email: "old@example.com", LegacyIsAdmin: boolPtr(true)})

	res, err := h.svc.Login(context.Background(), "old@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Session.Claims.Role != domain.RoleSuperAdmin {
		t.Fatalf("expected SuperAdmin claim, got %s", res.Session.Claims.Role)
	}

	a, _ := h.store.FindByID(context.Background(), "old")
	if a.Role != domain.RoleSuperAdmin {
		t.Fatalf("expected stored role normalized, got %q", a.Role)
	}
}

func TestLogin_NormalizationFailure_NotFatal(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.put(t, domain.Account{ID: "old", Email: "old@example.com", LegacyIsAdmin: boolPtr(false)})
	h.store.condErr = errors.New("write failed")

	res, err := h.svc.Login(context.Background(), "old@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Session.Claims.Role != domain.RoleMember {
		t.Fatalf("expected Member claim, got %s", res.Session.Claims.Role)
	}
	if h.store.condRuns != 1 {
		t.Fatalf("expected one normalization attempt, got %d", h.store.condRuns)
	}
}

func TestLogin_MigratedAccount_NoConditionalWrite(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.seedTeam(t)

	if _, err := h.svc.Login(context.Background(), "mb@example.com", "pw"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if h.store.condRuns != 0 {
		t.Fatalf("expected no conditional write, got %d", h.store.condRuns)
	}
}

func TestAuthenticate_And_Refresh(t *testing.T) {
	h := newHarness(t, policy.Options{})

	p, err := h.svc.Authenticate("sess.u1.Admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p != principal("u1", domain.RoleAdmin) {
		t.Fatalf("unexpected principal %+v", p)
	}

	_, err = h.svc.Authenticate("garbage")
	requireErrCode(t, err, "token_invalid")

	sess, err := h.svc.Refresh(context.Background(), "sess.u1.Admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sess.Claims.Subject != "u1" || sess.Claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected refreshed claims %+v", sess.Claims)
	}

	_, err = h.svc.Refresh(context.Background(), "garbage")
	requireErrCode(t, err, "token_invalid")
}
