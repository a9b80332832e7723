package http

import (
	"log/slog"
	"net/http"

	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/pkg/httputil"
)

// DashboardHandler serves the admin dashboard overview.
type DashboardHandler struct {
	service *service.DashboardService
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  logger,
	}
}

// Overview handles GET /api/v1/admin/dashboard.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Overview(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
