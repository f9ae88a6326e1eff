package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

const pgUniqueViolation = "23505"

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// ---------- helpers ----------

// mapErr converts driver errors to the store contract. Everything that is
// not a known constraint violation is treated as a transient store failure.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrEmailAlreadyExists()
	}
	return domain.ErrStoreUnavailable(err)
}

// whereClause renders f starting at placeholder $start.
func whereClause(f domain.AccountFilter, start int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.RoleAbsent {
		conds = append(conds, "role IS NULL")
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		conds = append(conds, fmt.Sprintf("%s = $%d", resolvedRoleSQL, start+len(args)-1))
	}
	if f.ExcludeID != "" {
		args = append(args, f.ExcludeID)
		conds = append(conds, fmt.Sprintf("id <> $%d", start+len(args)-1))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// setClause renders the patch starting at placeholder $start.
func setClause(p domain.AccountPatch, start int) (string, []any) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, start+len(args)-1))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", strings.TrimSpace(*p.Email))
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}
	if p.Role != nil {
		add("role", nullRole(*p.Role))
	}
	return strings.Join(sets, ", "), args
}

func (r *AccountRepo) findOne(ctx context.Context, q string, arg string) (domain.Account, error) {
	ar, err := scanAccount(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, mapErr(err)
	}
	return toDomainAccount(ar), nil
}

// ---------- domain.AccountStore ----------

func (r *AccountRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1;`
	return r.findOne(ctx, q, id)
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 LIMIT 1;`
	return r.findOne(ctx, q, email)
}

func (r *AccountRepo) InsertUnique(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = strings.TrimSpace(a.Email)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	const q = `
INSERT INTO accounts (id, name, email, password_hash, role, legacy_is_admin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), NOW())
RETURNING ` + accountColumns + `;`

	ar, err := scanAccount(r.db.QueryRowContext(ctx, q,
		a.ID, a.Name, a.Email, a.PasswordHash, nullRole(a.Role), nullBool(a.LegacyIsAdmin), nullTime(a.CreatedAt),
	))
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) UpdateConditional(ctx context.Context, id string, cond domain.Condition, p domain.AccountPatch) (int64, error) {
	var pred string
	switch cond {
	case domain.CondRoleAbsent:
		pred = "role IS NULL"
	default:
		return 0, domain.ErrInternal(fmt.Errorf("unknown condition %d", cond))
	}

	set, args := setClause(p, 2)
	q := `UPDATE accounts SET ` + set + ` WHERE id = $1 AND ` + pred + `;`

	res, err := r.db.ExecContext(ctx, q, append([]any{id}, args...)...)
	if err != nil {
		return 0, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *AccountRepo) Update(ctx context.Context, id string, p domain.AccountPatch) error {
	set, args := setClause(p, 2)
	q := `UPDATE accounts SET ` + set + ` WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, append([]any{id}, args...)...)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrAccountNotFound()
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM accounts WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrAccountNotFound()
	}
	return nil
}

func (r *AccountRepo) Count(ctx context.Context, f domain.AccountFilter) (int, error) {
	where, args := whereClause(f, 1)
	q := `SELECT COUNT(1) FROM accounts` + where + `;`

	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *AccountRepo) Scan(ctx context.Context, f domain.AccountFilter) ([]domain.Account, error) {
	where, args := whereClause(f, 1)
	q := `SELECT ` + accountColumns + ` FROM accounts` + where + ` ORDER BY created_at DESC, seq DESC;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		ar, err := scanAccount(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, toDomainAccount(ar))
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}
