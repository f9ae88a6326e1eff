package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// DefaultSessionTTL is the fixed validity window of a session claim.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionSigner issues and validates stateless HS256 session claims.
// There is no server-side session table: a claim stays valid until it
// expires, and it carries the role as of issuance.
type SessionSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionSigner(secret, issuer string, ttl time.Duration) *SessionSigner {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the wall clock used for issuance and expiry checks.
func (s *SessionSigner) WithClock(now func() time.Time) *SessionSigner {
	if now != nil {
		s.now = now
	}
	return s
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *SessionSigner) Issue(accountID string, role domain.Role) (accounts.Session, error) {
	if accountID == "" || !role.Valid() {
		return accounts.Session{}, domain.ErrTokenSignFailed(errors.New("subject and valid role required"))
	}

	now := s.now().Truncate(time.Second)
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return accounts.Session{}, domain.ErrTokenSignFailed(err)
	}

	return accounts.Session{
		Token: signed,
		Claims: accounts.SessionClaims{
			Subject:   accountID,
			Role:      role,
			IssuedAt:  now,
			ExpiresAt: exp,
		},
	}, nil
}

// Validate checks signature, algorithm, issuer and now < expiresAt.
func (s *SessionSigner) Validate(token string) (accounts.SessionClaims, error) {
	if token == "" {
		return accounts.SessionClaims{}, domain.ErrTokenMissing()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return accounts.SessionClaims{}, domain.ErrTokenExpired()
		}
		return accounts.SessionClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return accounts.SessionClaims{}, domain.ErrTokenInvalid()
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return accounts.SessionClaims{}, domain.ErrTokenInvalid()
	}

	out := accounts.SessionClaims{
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// Refresh re-issues a still-valid claim with the same subject and role.
func (s *SessionSigner) Refresh(token string) (accounts.Session, error) {
	claims, err := s.Validate(token)
	if err != nil {
		return accounts.Session{}, err
	}
	return s.Issue(claims.Subject, claims.Role)
}
