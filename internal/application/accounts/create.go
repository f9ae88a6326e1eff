package accounts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

type CreateInput struct {
	Name     string
	Email    string
	Password string
	// Role is optional; empty means Member.
	Role string
}

// maxPasswordBytes is bcrypt's input limit. It counts bytes, so a multibyte
// password can pass a character-length check and still be too long.
const maxPasswordBytes = 72

func errPasswordTooLong() error {
	return domain.ErrInvalidField("password", "at most 72 bytes")
}

func (in CreateInput) normalize() (CreateInput, domain.Role, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	switch {
	case in.Name == "":
		return in, "", domain.ErrMissingField("name")
	case in.Email == "":
		return in, "", domain.ErrMissingField("email")
	case in.Password == "":
		return in, "", domain.ErrMissingField("password")
	case len(in.Password) > maxPasswordBytes:
		return in, "", errPasswordTooLong()
	}

	if strings.TrimSpace(in.Role) == "" {
		return in, domain.RoleMember, nil
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return in, "", err
	}
	return in, role, nil
}

// CreateAccount creates an account on behalf of p. The policy check runs
// before the email lookup so an unprivileged caller cannot probe emails.
func (s *Service) CreateAccount(ctx context.Context, p Principal, in CreateInput) (AccountView, error) {
	if err := requirePrincipal(p); err != nil {
		return AccountView{}, err
	}
	in, role, err := in.normalize()
	if err != nil {
		return AccountView{}, err
	}

	if d := s.policy.CanCreate(p.Role, role); !d.Allowed {
		return AccountView{}, d.Err()
	}

	fctx, cancel := s.withTimeout(ctx)
	_, err = s.store.FindByEmail(fctx, in.Email)
	cancel()
	switch {
	case err == nil:
		return AccountView{}, domain.ErrEmailAlreadyExists()
	case !domain.Is(err, "account_not_found"):
		return AccountView{}, storeErr(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AccountView{}, err
	}

	ictx, cancel := s.withTimeout(ctx)
	created, err := s.store.InsertUnique(ictx, domain.Account{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	cancel()
	if err != nil {
		return AccountView{}, storeErr(err)
	}

	logger.WithCtx(ctx).Info().
		Str("actor_id", p.AccountID).
		Str("account_id", created.ID).
		Str("role", role.String()).
		Msg("account created")

	s.publish(ctx, AccountEvent{Type: EventAccountCreated, AccountID: created.ID, ActorID: p.AccountID, Role: role})
	return toView(created), nil
}
