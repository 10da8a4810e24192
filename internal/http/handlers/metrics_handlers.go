package handlers

import (
	"log/slog"
	"net/http"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
)

// GetDashboardMetricsHandler godoc
// @Summary Dashboard counts for the caller's inventory
// @Tags metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repo.Metrics
// @Failure 500 {string} string "Internal error"
// @Router /metrics/dashboard [get]
func GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := metricsRepo.GetDashboardMetrics(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		slog.Error("failed to fetch metrics", "error", err)
		http.Error(w, "failed to fetch metrics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
