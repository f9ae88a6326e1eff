package dto

import (
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/migration"
)

type AccountView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAccountView(a accounts.AccountView) AccountView {
	return AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role.String(),
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
}

type AccountData struct {
	Account AccountView `json:"account"`
}

type AccountListData struct {
	Accounts []AccountView `json:"accounts"`
}

func NewAccountListData(in []accounts.AccountView) AccountListData {
	out := make([]AccountView, 0, len(in))
	for _, a := range in {
		out = append(out, NewAccountView(a))
	}
	return AccountListData{Accounts: out}
}

type SessionView struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
}

func NewSessionView(s accounts.Session, now time.Time) SessionView {
	in := int64(s.Claims.ExpiresAt.Sub(now).Seconds())
	if in < 0 {
		in = 0
	}
	return SessionView{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresAt: s.Claims.ExpiresAt.UTC(),
		ExpiresIn: in,
	}
}

type LoginData struct {
	Account AccountView `json:"account"`
	Session SessionView `json:"session"`
}

type RefreshData struct {
	Session SessionView `json:"session"`
}

type MigrationFailureView struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type MigrationReportData struct {
	Scanned  int                    `json:"scanned"`
	Migrated int                    `json:"migrated"`
	Skipped  int                    `json:"skipped"`
	Failures []MigrationFailureView `json:"failures"`
}

func NewMigrationReportData(r migration.Report) MigrationReportData {
	out := MigrationReportData{
		Scanned:  r.Scanned,
		Migrated: r.Migrated,
		Skipped:  r.Skipped,
		Failures: make([]MigrationFailureView, 0, len(r.Failures)),
	}
	for _, f := range r.Failures {
		msg := "unknown"
		if f.Err != nil {
			msg = f.Err.Error()
		}
		out.Failures = append(out.Failures, MigrationFailureView{ID: f.ID, Error: msg})
	}
	return out
}
