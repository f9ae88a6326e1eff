package accounts

import (
	"context"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/migration"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

/*
Store
-----
Persistence port for accounts. The contract (error mapping, ordering) lives
on domain.AccountStore so the migration and seed packages share it.
*/
type Store = domain.AccountStore

/*
PasswordHasher
--------------
Abstracts bcrypt. Verify fails closed: a malformed hash is a mismatch.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

/*
SessionIssuer
-------------
Issues, validates and refreshes stateless session claims (JWT).
Validate returns the role embedded at issuance, not the current role.
*/
type SessionClaims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Session struct {
	Token  string
	Claims SessionClaims
}

type SessionIssuer interface {
	Issue(accountID string, role domain.Role) (Session, error)
	Validate(token string) (SessionClaims, error)
	Refresh(token string) (Session, error)
}

/*
Principal
---------
The authenticated caller. Resolved once per request from the claim and
passed explicitly into every gateway operation.
*/
type Principal struct {
	AccountID string
	Role      domain.Role
}

/*
EventPublisher
--------------
Publishes account lifecycle notifications. Best effort: the gateway logs a
failed publish and carries on.
*/
type EventType string

const (
	EventAccountCreated EventType = "account.created"
	EventAccountUpdated EventType = "account.updated"
	EventAccountDeleted EventType = "account.deleted"
)

type AccountEvent struct {
	Type      EventType
	AccountID string
	ActorID   string
	Role      domain.Role
	At        time.Time
}

type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, evt AccountEvent) error
}

/*
MigrationRunner
---------------
Runs the role normalizer, optionally under a cross-instance lease.
*/
type MigrationRunner interface {
	Run(ctx context.Context) (migration.Report, error)
}
