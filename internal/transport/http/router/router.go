package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/response"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

type AccountsHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	MigrateRoles(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health   HealthHandler
	Auth     AuthHandler
	Accounts AccountsHandler
	Admin    AdminHandler

	AuthMW func(http.Handler) http.Handler

	// MetricsHandler serves /metrics; defaults to the Prometheus handler.
	MetricsHandler http.Handler
	BodyLimit      int64
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("nil Accounts handler")
	}
	if deps.Admin == nil {
		return nil, fmt.Errorf("nil Admin handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(deps.BodyLimit, response.WriteError))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Get("/", deps.Accounts.List)
			r.Post("/", deps.Accounts.Create)
			r.Get("/{id}", deps.Accounts.Get)
			r.Patch("/{id}", deps.Accounts.Update)
			r.Delete("/{id}", deps.Accounts.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Post("/migrations/roles", deps.Admin.MigrateRoles)
		})
	})

	return r, nil
}
