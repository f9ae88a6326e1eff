package middleware

import (
	"context"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

func WithPrincipal(ctx context.Context, p accounts.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (accounts.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(accounts.Principal)
	return p, ok && p.AccountID != ""
}
