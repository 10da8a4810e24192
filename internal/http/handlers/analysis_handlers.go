package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	"github.com/rogerio-castellano/stock-notifier/internal/billing"
)

// parseAnalysisDate accepts RFC3339 or a plain date. A plain toDate covers the whole day.
func parseAnalysisDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if ts, err := parseTimeParam(s); err == nil {
		return ts, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return &d, nil
}

// GetProductAnalysisHandler godoc
// @Summary Profit per product over a time window
// @Description Sums (selling price - actual price) x quantity over billed items, grouped by display name, highest profit first.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param range query string false "1m (default), 3m, 6m, 1y, 3y, 4y, 5y or all"
// @Param fromDate query string false "Window start (RFC3339 or YYYY-MM-DD); used with toDate"
// @Param toDate query string false "Window end (RFC3339 or YYYY-MM-DD); used with fromDate"
// @Param category query string false "Only products of this category; all for every category"
// @Success 200 {object} billing.Analysis
// @Failure 400 {string} string "Invalid range or dates"
// @Failure 500 {string} string "Internal error"
// @Router /products/analysis [get]
func GetProductAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	af := billing.AnalysisFilter{Range: q.Get("range"), Category: q.Get("category")}

	var err error
	if af.From, err = parseAnalysisDate(q.Get("fromDate"), false); err != nil {
		http.Error(w, "invalid fromDate format", http.StatusBadRequest)
		return
	}
	if af.To, err = parseAnalysisDate(q.Get("toDate"), true); err != nil {
		http.Error(w, "invalid toDate format", http.StatusBadRequest)
		return
	}

	analysis, err := billingService.Analysis(r.Context(), auth.UserID(r.Context()), af)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("failed to build product analysis", "error", err)
		http.Error(w, "failed to build product analysis", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
