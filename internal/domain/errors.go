package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups errors by how callers should react. Transport maps each
// kind to one status code.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindInfrastructure ErrKind = "infrastructure" // 503, retryable
	KindInternal       ErrKind = "internal"       // 500
)

// Error is the only error type the account core returns to callers.
// Code is a stable machine-readable identifier and Message is safe to show
// to clients. Cause is for logs only.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// with attaches key/value pairs to Meta.
func (e *Error) with(kv ...string) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]string, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Meta[kv[i]] = kv[i+1]
	}
	return e
}

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// Is reports whether err is, or wraps, a domain error with the given code.
func Is(err error, code string) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the caller may safely retry the operation.
// Only transient store failures qualify.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == KindInfrastructure
}

// Validation (400)

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return New(KindValidation, "missing_field", "missing required field").with("field", field)
}

func ErrInvalidField(field, reason string) *Error {
	return New(KindValidation, "invalid_field", "invalid field").with("field", field, "reason", reason)
}

func ErrNoFieldsToUpdate() *Error {
	return New(KindValidation, "no_fields", "at least one field must be provided for update")
}

func ErrInvalidRole(role string) *Error {
	return New(KindValidation, "invalid_role", "invalid role").with("role", role)
}

// Authentication (401)

// ErrInvalidCredentials is the single answer to every failed login so
// callers cannot tell which accounts exist.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid email or password")
}

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "no token provided")
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token is expired")
}

// Policy denials (403, 409)

// ErrPolicyDenied is returned when the role policy engine rejects a request.
// The reason is for operators; it never grants partial trust.
func ErrPolicyDenied(reason string) *Error {
	return New(KindForbidden, "forbidden", reason).with("reason", reason)
}

// ErrLastSuperAdminProtected blocks removing or demoting the only SuperAdmin.
func ErrLastSuperAdminProtected(reason string) *Error {
	return New(KindConflict, "last_superadmin_protected", reason).with("reason", reason)
}

// Lookup (404)

func ErrAccountNotFound() *Error {
	return New(KindNotFound, "account_not_found", "account not found")
}

// State conflicts (409)

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "account with this email already exists")
}

func ErrMigrationRunning() *Error {
	return New(KindConflict, "migration_running", "role migration already running")
}

// Infrastructure and internal (5xx)

func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "store_unavailable", "account store unavailable", cause)
}

func ErrLeaseUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "lease_unavailable", "lease store unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
