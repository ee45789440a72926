package handlers

import (
	"net/http"

	"github.com/Dosada05/medcamp/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Stats godoc
// @Summary Статистика для организатора
// @Tags organizer
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Failure 403 {object} map[string]string "Только организатор"
// @Security BearerAuth
// @Router /organizer/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context(), callerFrom(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
