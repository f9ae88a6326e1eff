package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/migration"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/memory"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/response"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out, unwrapping {"data": ...} when present.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		raw = wrapped.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", string(raw), err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v; body=%s", err, rr.Body.String())
	}
	return body.Error.Code
}

type testEnv struct {
	t      *testing.T
	repo   *memory.AccountRepo
	hasher *security.BcryptHasher
	signer *security.SessionSigner
	svc    *accounts.Service
	mux    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.NewAccountRepo()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	signer := security.NewSessionSigner("test-secret", "account-service", time.Hour)
	runner := migration.NewRunner(migration.NewNormalizer(repo, time.Second), nil, 0)
	svc := accounts.NewService(repo, hasher, signer, policy.New(policy.Options{}),
		rabbitmq.NewNoopPublisher(), runner, accounts.Config{StoreTimeout: time.Second})

	authH := NewAuthHandler(svc)
	accH := NewAccountsHandler(svc)
	adminH := NewAdminHandler(svc)
	authMW := middleware.Auth(svc, response.WriteError)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Post("/login", authH.Login)
	r.Post("/refresh", authH.Refresh)
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/accounts", accH.List)
		r.Post("/accounts", accH.Create)
		r.Get("/accounts/{id}", accH.Get)
		r.Patch("/accounts/{id}", accH.Update)
		r.Delete("/accounts/{id}", accH.Delete)
		r.Post("/migrations/roles", adminH.MigrateRoles)
	})

	return &testEnv{t: t, repo: repo, hasher: hasher, signer: signer, svc: svc, mux: r}
}

// put inserts an account directly and returns a bearer token for it.
func (e *testEnv) put(id, email, password string, role domain.Role) string {
	e.t.Helper()

	hash, err := e.hasher.Hash(password)
	if err != nil {
		e.t.Fatalf("hash: %v", err)
	}
	if _, err := e.repo.InsertUnique(context.Background(), domain.Account{
		ID: id, Name: id, Email: email, PasswordHash: hash, Role: role,
	}); err != nil {
		e.t.Fatalf("insert %s: %v", id, err)
	}
	if role == "" {
		return ""
	}
	sess, err := e.signer.Issue(id, role)
	if err != nil {
		e.t.Fatalf("issue: %v", err)
	}
	return sess.Token
}

func (e *testEnv) putLegacy(id, email string, isAdmin *bool) {
	e.t.Helper()
	if _, err := e.repo.InsertUnique(context.Background(), domain.Account{
		ID: id, Name: id, Email: email, PasswordHash: "x", LegacyIsAdmin: isAdmin,
	}); err != nil {
		e.t.Fatalf("insert %s: %v", id, err)
	}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var rd io.Reader
	if body != nil {
		rd = mustJSONBody(e.t, body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func boolPtr(b bool) *bool { return &b }
