package http_handlers

import (
	"net/http"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *accounts.Service
	now func() time.Time
}

func NewAuthHandler(svc *accounts.Service) *AuthHandler {
	return &AuthHandler{svc: svc, now: time.Now}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	req.Normalize()

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	middleware.ObserveLogin(err)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.LoginData{
		Account: dto.NewAccountView(res.Account),
		Session: dto.NewSessionView(res.Session, h.now()),
	})
}

// Refresh handles POST /api/v1/auth/refresh. The current claim is read from
// the Authorization header; the new claim keeps its subject and role.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, err := middleware.BearerToken(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.Refresh(r.Context(), raw)
	if err != nil {
		logger.WithCtx(r.Context()).Debug().Err(err).Msg("refresh rejected")
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RefreshData{Session: dto.NewSessionView(sess, h.now())})
}
