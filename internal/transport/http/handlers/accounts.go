package http_handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/response"
)

type AccountsHandler struct {
	svc *accounts.Service
}

func NewAccountsHandler(svc *accounts.Service) *AccountsHandler {
	return &AccountsHandler{svc: svc}
}

func principal(w http.ResponseWriter, r *http.Request) (accounts.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
	}
	return p, ok
}

func targetID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return "", false
	}
	return id, true
}

// List handles GET /api/v1/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	views, err := h.svc.ListAccounts(r.Context(), p)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewAccountListData(views))
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := targetID(w, r)
	if !ok {
		return
	}

	v, err := h.svc.GetAccount(r.Context(), p, id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.AccountData{Account: dto.NewAccountView(v)})
}

// Create handles POST /api/v1/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	req.Normalize()
	if err := dto.Validate(&req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	v, err := h.svc.CreateAccount(r.Context(), p, accounts.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	middleware.ObserveMutation("create", err)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Created(w, dto.AccountData{Account: dto.NewAccountView(v)})
}

// Update handles PATCH /api/v1/accounts/{id}.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := targetID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	v, err := h.svc.UpdateAccount(r.Context(), p, id, accounts.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	middleware.ObserveMutation("update", err)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.AccountData{Account: dto.NewAccountView(v)})
}

// Delete handles DELETE /api/v1/accounts/{id}.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := targetID(w, r)
	if !ok {
		return
	}

	err := h.svc.DeleteAccount(r.Context(), p, id)
	middleware.ObserveMutation("delete", err)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}
