package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

const accountColumns = `id, name, email, password_hash, role, legacy_is_admin, created_at, updated_at`

// resolvedRoleSQL mirrors domain.ResolveRole. The CHECK constraint keeps
// role inside the enum, so the two never disagree.
const resolvedRoleSQL = `COALESCE(role, CASE WHEN legacy_is_admin THEN 'SuperAdmin' ELSE 'Member' END)`

type accountRow struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          sql.NullString
	LegacyIsAdmin sql.NullBool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (accountRow, error) {
	var ar accountRow
	err := s.Scan(
		&ar.ID,
		&ar.Name,
		&ar.Email,
		&ar.PasswordHash,
		&ar.Role,
		&ar.LegacyIsAdmin,
		&ar.CreatedAt,
		&ar.UpdatedAt,
	)
	return ar, err
}

func toDomainAccount(ar accountRow) domain.Account {
	a := domain.Account{
		ID:           ar.ID,
		Name:         ar.Name,
		Email:        ar.Email,
		PasswordHash: ar.PasswordHash,
		CreatedAt:    ar.CreatedAt,
		UpdatedAt:    ar.UpdatedAt,
	}
	if ar.Role.Valid {
		a.Role = domain.Role(ar.Role.String)
	}
	if ar.LegacyIsAdmin.Valid {
		v := ar.LegacyIsAdmin.Bool
		a.LegacyIsAdmin = &v
	}
	return a
}

func nullRole(r domain.Role) sql.NullString {
	return sql.NullString{String: string(r), Valid: r != ""}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
