package middleware

import (
	"net/http"
	"strings"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	pkgctx "github.com/baechuer/admin-dashboard/services/account-service/internal/pkg/context"
)

// Authenticator turns a raw bearer token into the caller's principal.
type Authenticator interface {
	Authenticate(token string) (accounts.Principal, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", domain.ErrTokenMissing()
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrTokenInvalid()
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", domain.ErrTokenMissing()
	}
	return raw, nil
}

// Auth validates the session claim and injects the principal into the
// request context. The role is the one embedded at issuance; there is no
// per-request store lookup.
func Auth(authn Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := BearerToken(r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			p, err := authn.Authenticate(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}
			if strings.TrimSpace(p.AccountID) == "" || !p.Role.Valid() {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			ctx := pkgctx.WithActorID(WithPrincipal(r.Context(), p), p.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
