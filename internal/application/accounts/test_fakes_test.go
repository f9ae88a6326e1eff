package accounts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/migration"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/memory"
)

/*
Fakes for ports
*/

// fakeStore wraps the in-memory store and injects errors per method.
type fakeStore struct {
	*memory.AccountRepo

	findByEmailErr error
	findByIDErr    error
	updateErr      error
	condErr        error
	countErr       error

	mu       sync.Mutex
	condRuns int
}

func newFakeStore() *fakeStore {
	return &fakeStore{AccountRepo: memory.NewAccountRepo()}
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if f.findByEmailErr != nil {
		return domain.Account{}, f.findByEmailErr
	}
	return f.AccountRepo.FindByEmail(ctx, email)
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (domain.Account, error) {
	if f.findByIDErr != nil {
		return domain.Account{}, f.findByIDErr
	}
	return f.AccountRepo.FindByID(ctx, id)
}

func (f *fakeStore) Update(ctx context.Context, id string, p domain.AccountPatch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.AccountRepo.Update(ctx, id, p)
}

func (f *fakeStore) UpdateConditional(ctx context.Context, id string, c domain.Condition, p domain.AccountPatch) (int64, error) {
	f.mu.Lock()
	f.condRuns++
	f.mu.Unlock()
	if f.condErr != nil {
		return 0, f.condErr
	}
	return f.AccountRepo.UpdateConditional(ctx, id, c, p)
}

func (f *fakeStore) Count(ctx context.Context, fl domain.AccountFilter) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.AccountRepo.Count(ctx, fl)
}

type fakeHasher struct {
	mu       sync.Mutex
	hashErr  error
	verifies int
	lastHash string
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "HASH(" + pw + ")", nil
}

func (h *fakeHasher) Verify(pw, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.lastHash = hash
	h.mu.Unlock()
	return hash == "HASH("+pw+")"
}

// fakeSessions issues "sess.<id>.<role>" tokens and never expires them.
type fakeSessions struct {
	issued []SessionClaims
}

func (f *fakeSessions) Issue(id string, role domain.Role) (Session, error) {
	c := SessionClaims{Subject: id, Role: role, IssuedAt: time.Unix(0, 0), ExpiresAt: time.Unix(3600, 0)}
	f.issued = append(f.issued, c)
	return Session{Token: "sess." + id + "." + role.String(), Claims: c}, nil
}

func (f *fakeSessions) Validate(token string) (SessionClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != "sess" {
		return SessionClaims{}, domain.ErrTokenInvalid()
	}
	role, err := domain.ParseRole(parts[2])
	if err != nil {
		return SessionClaims{}, domain.ErrTokenInvalid()
	}
	return SessionClaims{Subject: parts[1], Role: role}, nil
}

func (f *fakeSessions) Refresh(token string) (Session, error) {
	c, err := f.Validate(token)
	if err != nil {
		return Session{}, err
	}
	return f.Issue(c.Subject, c.Role)
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []AccountEvent
}

func (p *fakePublisher) PublishAccountEvent(_ context.Context, evt AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *fakePublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeRunner struct {
	calls int
	rep   migration.Report
	err   error
}

func (r *fakeRunner) Run(context.Context) (migration.Report, error) {
	r.calls++
	return r.rep, r.err
}

/*
Harness
*/

type harness struct {
	svc    *Service
	store  *fakeStore
	hasher *fakeHasher
	sess   *fakeSessions
	pub    *fakePublisher
	runner *fakeRunner
}

func newHarness(t *testing.T, opts policy.Options) *harness {
	t.Helper()
	h := &harness{
		store:  newFakeStore(),
		hasher: &fakeHasher{},
		sess:   &fakeSessions{},
		pub:    &fakePublisher{},
		runner: &fakeRunner{},
	}
	h.svc = NewService(h.store, h.hasher, h.sess, policy.New(opts), h.pub, h.runner, Config{StoreTimeout: time.Second})
	return h
}

func (h *harness) put(t *testing.T, a domain.Account) domain.Account {
	t.Helper()
	if a.PasswordHash == "" {
		a.PasswordHash = "HASH(pw)"
	}
	got, err := h.store.InsertUnique(context.Background(), a)
	if err != nil {
		t.Fatalf("seed %s: %v", a.ID, err)
	}
	return got
}

// seedTeam creates SuperAdmin "sa", Admin "ad" and Member "mb".
func (h *harness) seedTeam(t *testing.T) {
	t.Helper()
	h.put(t, domain.Account{ID: "sa", Name: "Sam", Email: "sa@example.com", Role: domain.RoleSuperAdmin})
	h.put(t, domain.Account{ID: "ad", Name: "Ada", Email: "ad@example.com", Role: domain.RoleAdmin})
	h.put(t, domain.Account{ID: "mb", Name: "Max", Email: "mb@example.com", Role: domain.RoleMember})
}

func principal(id string, role domain.Role) Principal {
	return Principal{AccountID: id, Role: role}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func requireKind(t *testing.T, err error, kind domain.ErrKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error kind=%q, got nil", kind)
	}
	if got := domain.KindOf(err); got != kind {
		t.Fatalf("expected kind=%q, got %q (%v)", kind, got, err)
	}
}
