package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

const (
	dbMaxOpenConns    = 20
	dbMaxIdleConns    = 10
	dbConnMaxIdleTime = 5 * time.Minute
	dbConnMaxLifetime = time.Hour
	dbPingTimeout     = 3 * time.Second
)

// NewDB opens the account store pool through the pgx stdlib driver and
// fails fast when the server cannot be reached.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty DB_ADDR")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxIdleTime(dbConnMaxIdleTime)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if debug {
		var user, name, version string
		_ = db.QueryRowContext(ctx,
			"SELECT current_user, current_database(), current_setting('server_version')",
		).Scan(&user, &name, &version)

		logger.Logger.Debug().
			Str("user", user).
			Str("db", name).
			Str("version", version).
			Msg("account store connected")
	}

	return db, nil
}
