package http_handlers

import (
	"net/http"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/response"
)

type AdminHandler struct {
	svc *accounts.Service
}

func NewAdminHandler(svc *accounts.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// MigrateRoles handles POST /api/v1/admin/migrations/roles. The batch runs
// synchronously; per-record failures come back in the report with a 200.
func (h *AdminHandler) MigrateRoles(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	rep, err := h.svc.RunRoleMigration(r.Context(), p)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewMigrationReportData(rep))
}
