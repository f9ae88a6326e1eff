package accounts

import (
	"context"
	"strings"
	"testing"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

func TestCreateAccount_AdminCreatesMember_DefaultRole(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.seedTeam(t)

	v, err := h.svc.CreateAccount(context.Background(), principal("ad", domain.RoleAdmin), CreateInput{
		Name: " New ", Email: "new@example.com", Password: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Role != domain.RoleMember || v.Name != "New" || v.ID == "" {
		t.Fatalf("unexpected view: %+v", v)
	}

	stored, err := h.store.FindByID(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.PasswordHash != "HASH(secret)" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
	if got := h.pub.types(); len(got) != 1 || got[0] != EventAccountCreated {
		t.Fatalf("expected created event, got %v", got)
	}
}

func TestCreateAccount_MissingFields(t *testing.T) {
	h := newHarness(t, policy.Options{})

	cases := []struct {
		in    CreateInput
		field string
	}{
		{CreateInput{Email: "a@example.com", Password: "x"}, "name"},
		{CreateInput{Name: "A", Password: "x"}, "email"},
		{CreateInput{Name: "A", Email: "  "}, "email"},
		{CreateInput{Name: "A", Email: "a@example.com"}, "password"},
	}
	for _, c := range cases {
		_, err := h.svc.CreateAccount(context.Background(), principal("sa", domain.RoleSuperAdmin), c.in)
		requireErrCode(t, err, "missing_field")
		if de := err.(*domain.Error); de.Meta["field"] != c.field {
			t.Fatalf("expected field %q, got %+v", c.field, de.Meta)
		}
	}
}

func TestCreateAccount_PasswordOverBcryptLimit_InvalidField(t *testing.T) {
	h := newHarness(t, policy.Options{})

	// 40 characters, 80 bytes.
	_, err := h.svc.CreateAccount(context.Background(), principal("sa", domain.RoleSuperAdmin), CreateInput{
		Name: "A", Email: "a@example.com", Password: strings.Repeat("é", 40),
	})
	requireErrCode(t, err, "invalid_field")
	if de := err.(*domain.Error); de.Meta["field"] != "password" {
		t.Fatalf("expected password field, got %+v", de.Meta)
	}

	_, err = h.svc.CreateAccount(context.Background(), principal("sa", domain.RoleSuperAdmin), CreateInput{
		Name: "A", Email: "a@example.com", Password: strings.Repeat("x", 72),
	})
	if err != nil {
		t.Fatalf("72 bytes must be accepted: %v", err)
	}
}

func TestCreateAccount_InvalidRole(t *testing.T) {
	h := newHarness(t, policy.Options{})

	_, err := h.svc.CreateAccount(context.Background(), principal("sa", domain.RoleSuperAdmin), CreateInput{
		Name: "A", Email: "a@example.com", Password: "x", Role: "root",
	})
	requireErrCode(t, err, "invalid_role")
}

func TestCreateAccount_PolicyMatrix(t *testing.T) {
	cases := []struct {
		actor domain.Role
		role  string
		ok    bool
	}{
		{domain.RoleMember, "Member", false},
		{domain.RoleAdmin, "Member", true},
		{domain.RoleAdmin, "Admin", false},
		{domain.RoleAdmin, "SuperAdmin", false},
		{domain.RoleSuperAdmin, "Admin", true},
		{domain.RoleSuperAdmin, "Super-Admin", true},
	}
	for _, c := range cases {
		h := newHarness(t, policy.Options{})
		_, err := h.svc.CreateAccount(context.Background(), principal("actor", c.actor), CreateInput{
			Name: "A", Email: "a@example.com", Password: "x", Role: c.role,
		})
		if c.ok && err != nil {
			t.Fatalf("%s creating %s: unexpected err %v", c.actor, c.role, err)
		}
		if !c.ok {
			requireKind(t, err, domain.KindForbidden)
			n, _ := h.store.Count(context.Background(), domain.AccountFilter{})
			if n != 0 {
				t.Fatalf("denied create must not persist")
			}
		}
	}
}

func TestCreateAccount_DuplicateEmail_Conflict(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.seedTeam(t)

	_, err := h.svc.CreateAccount(context.Background(), principal("sa", domain.RoleSuperAdmin), CreateInput{
		Name: "Dup", Email: "mb@example.com", Password: "x",
	})
	requireErrCode(t, err, "email_already_exists")
	requireKind(t, err, domain.KindConflict)
}

func TestCreateAccount_MemberCannotProbeEmails(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.seedTeam(t)

	_, err := h.svc.CreateAccount(context.Background(), principal("mb", domain.RoleMember), CreateInput{
		Name: "Dup", Email: "sa@example.com", Password: "x",
	})
	requireKind(t, err, domain.KindForbidden)
}

func TestCreateAccount_InvalidPrincipal(t *testing.T) {
	h := newHarness(t, policy.Options{})

	_, err := h.svc.CreateAccount(context.Background(), Principal{}, CreateInput{Name: "A", Email: "a@example.com", Password: "x"})
	requireErrCode(t, err, "token_invalid")
}

func TestCreateAccount_PublishFailure_DoesNotFail(t *testing.T) {
	h := newHarness(t, policy.Options{})
	h.pub.err = domain.ErrInternal(nil)

	if _, err := h.svc.CreateAccount(context.Background(), principal("sa", domain.RoleSuperAdmin), CreateInput{
		Name: "A", Email: "a@example.com", Password: "x",
	}); err != nil {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
}
