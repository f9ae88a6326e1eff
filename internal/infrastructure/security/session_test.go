package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSigner(ttl time.Duration) (*SessionSigner, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewSessionSigner("secret", "account-service", ttl).WithClock(clk.Now), clk
}

func TestNewSessionSigner_DefaultTTL(t *testing.T) {
	t.Parallel()

	s := NewSessionSigner("secret", "", 0)
	if s.ttl != DefaultSessionTTL {
		t.Fatalf("expected default ttl, got %s", s.ttl)
	}
}

func TestSessionSigner_IssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	s, clk := newTestSigner(time.Hour)
	sess, err := s.Issue("u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected non-empty token")
	}
	if !sess.Claims.ExpiresAt.Equal(clk.t.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %s", sess.Claims.ExpiresAt)
	}

	claims, err := s.Validate(sess.Token)
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.IssuedAt.Equal(clk.t) {
		t.Fatalf("unexpected issued at %s", claims.IssuedAt)
	}
}

func TestSessionSigner_Validate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	s, clk := newTestSigner(time.Hour)
	sess, err := s.Issue("u1", domain.RoleMember)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}

	clk.Advance(time.Hour - time.Second)
	if _, err := s.Validate(sess.Token); err != nil {
		t.Fatalf("expected valid just before expiry, got %v", err)
	}

	clk.Advance(time.Second)
	_, err = s.Validate(sess.Token)
	if !domain.Is(err, "token_expired") {
		t.Fatalf("expected token_expired at expiry, got %v", err)
	}

	clk.Advance(24 * time.Hour)
	_, err = s.Validate(sess.Token)
	if !domain.Is(err, "token_expired") {
		t.Fatalf("expected token_expired after expiry, got %v", err)
	}
}

func TestSessionSigner_Validate_ReturnsRoleAsIssued(t *testing.T) {
	t.Parallel()

	// The signer never looks at the store, so a later role change cannot
	// affect an outstanding claim.
	s, _ := newTestSigner(time.Hour)
	sess, err := s.Issue("u1", domain.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	claims, err := s.Validate(sess.Token)
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	if claims.Role != domain.RoleSuperAdmin {
		t.Fatalf("expected role as issued, got %s", claims.Role)
	}
}

func TestSessionSigner_Validate_WrongSecret_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s1 := NewSessionSigner("secret1", "account-service", time.Hour)
	s2 := NewSessionSigner("secret2", "account-service", time.Hour)

	sess, err := s1.Issue("u1", domain.RoleMember)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	if _, err := s2.Validate(sess.Token); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestSessionSigner_Validate_WrongIssuer_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s1 := NewSessionSigner("secret", "other-service", time.Hour)
	s2 := NewSessionSigner("secret", "account-service", time.Hour)

	sess, err := s1.Issue("u1", domain.RoleMember)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	if _, err := s2.Validate(sess.Token); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestSessionSigner_Validate_Garbage(t *testing.T) {
	t.Parallel()

	s := NewSessionSigner("secret", "account-service", time.Hour)

	if _, err := s.Validate(""); !domain.Is(err, "token_missing") {
		t.Fatalf("expected token_missing, got %v", err)
	}
	if _, err := s.Validate("not-a-jwt"); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestSessionSigner_Validate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	s := NewSessionSigner("secret", "account-service", time.Hour)

	claims := sessionClaims{
		Role: "SuperAdmin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "account-service",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := s.Validate(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid for alg=none, got %v", err)
	}

	tok, err = jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := s.Validate(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid for HS512, got %v", err)
	}
}

func TestSessionSigner_Validate_UnknownRole_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s := NewSessionSigner("secret", "account-service", time.Hour)
	claims := sessionClaims{
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "account-service",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Validate(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestSessionSigner_Issue_RejectsEmptySubjectOrRole(t *testing.T) {
	t.Parallel()

	s := NewSessionSigner("secret", "account-service", time.Hour)
	if _, err := s.Issue("", domain.RoleMember); !domain.Is(err, "token_sign_failed") {
		t.Fatalf("expected token_sign_failed, got %v", err)
	}
	if _, err := s.Issue("u1", domain.Role("")); !domain.Is(err, "token_sign_failed") {
		t.Fatalf("expected token_sign_failed, got %v", err)
	}
}

func TestSessionSigner_Refresh_ExtendsWindow(t *testing.T) {
	t.Parallel()

	s, clk := newTestSigner(time.Hour)
	first, err := s.Issue("u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}

	clk.Advance(30 * time.Minute)
	next, err := s.Refresh(first.Token)
	if err != nil {
		t.Fatalf("refresh err: %v", err)
	}
	if next.Claims.Subject != "u1" || next.Claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", next.Claims)
	}
	if !next.Claims.ExpiresAt.After(first.Claims.ExpiresAt) {
		t.Fatalf("expected later expiry")
	}
	if strings.Count(next.Token, ".") != 2 {
		t.Fatalf("expected a JWT, got %q", next.Token)
	}

	// The old claim still expires on its own schedule; the new one outlives it.
	clk.Advance(45 * time.Minute)
	if _, err := s.Validate(first.Token); !domain.Is(err, "token_expired") {
		t.Fatalf("expected first claim expired, got %v", err)
	}
	if _, err := s.Validate(next.Token); err != nil {
		t.Fatalf("expected refreshed claim valid, got %v", err)
	}
}

func TestSessionSigner_Refresh_ExpiredClaimRejected(t *testing.T) {
	t.Parallel()

	s, clk := newTestSigner(time.Hour)
	sess, err := s.Issue("u1", domain.RoleMember)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	clk.Advance(2 * time.Hour)
	if _, err := s.Refresh(sess.Token); !domain.Is(err, "token_expired") {
		t.Fatalf("expected token_expired, got %v", err)
	}
}
