package accounts

import (
	"context"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// ListAccounts returns every account except the caller's, newest first.
func (s *Service) ListAccounts(ctx context.Context, p Principal) ([]AccountView, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if d := s.policy.CanList(p.Role); !d.Allowed {
		return nil, d.Err()
	}

	sctx, cancel := s.withTimeout(ctx)
	defer cancel()
	all, err := s.store.Scan(sctx, domain.AccountFilter{ExcludeID: p.AccountID})
	if err != nil {
		return nil, storeErr(err)
	}

	out := make([]AccountView, 0, len(all))
	for _, a := range all {
		out = append(out, toView(a))
	}
	return out, nil
}

// GetAccount reads one account with the same visibility as ListAccounts.
func (s *Service) GetAccount(ctx context.Context, p Principal, id string) (AccountView, error) {
	if err := requirePrincipal(p); err != nil {
		return AccountView{}, err
	}
	if d := s.policy.CanList(p.Role); !d.Allowed {
		return AccountView{}, d.Err()
	}

	a, err := s.findByID(ctx, id)
	if err != nil {
		return AccountView{}, err
	}
	return toView(a), nil
}
