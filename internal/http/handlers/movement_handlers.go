package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	repo "github.com/rogerio-castellano/stock-notifier/internal/repo"
)

type QuantityAdjustmentRequest struct {
	Delta  int    `json:"delta"` // can be positive or negative
	Reason string `json:"reason,omitempty"`
}

// AdjustQuantityHandler godoc
// @Summary Adjust quantity of a product
// @Description Applies a stock delta, logs the movement and runs an unforced reorder check.
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity change"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid adjustment"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/adjust [post]
func AdjustQuantityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	var req QuantityAdjustmentRequest
	if err := readJSON(w, r, &req); err != nil || req.Delta == 0 {
		http.Error(w, "invalid adjustment", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if _, err := productRepo.GetForUser(ctx, auth.UserID(ctx), id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not update quantity", http.StatusInternalServerError)
		return
	}

	product, err := productRepo.AdjustQuantity(ctx, id, req.Delta)
	if err != nil {
		http.Error(w, "could not update quantity", http.StatusInternalServerError)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}
	if err := movementRepo.Log(ctx, id, req.Delta, reason); err != nil {
		slog.Warn("failed to log stock movement", "product_id", id, "error", err)
	}

	if product.BelowReorderLevel() {
		outcome, err := dispatcher.CheckReorderForProduct(ctx, notify.ReorderCheck{
			ProductID:    product.ID,
			Quantity:     product.Quantity,
			ReorderLevel: product.ReorderLevel,
		})
		if err != nil {
			slog.Error("reorder check failed", "product_id", id, "error", err)
		} else {
			slog.Info("product below reorder level", "product_id", id, "quantity", product.Quantity,
				"reorder_level", product.ReorderLevel, "notification", outcome.Status)
		}
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// fixRFC3339Plus undoes the '+' to ' ' substitution query decoding applies to
// offsets, e.g. 2025-07-03T17:44:03+02:00 arrives as 2025-07-03T17:44:03 02:00.
func fixRFC3339Plus(s string) string {
	if len(s) == len(time.RFC3339) && s[len(s)-6] == ' ' {
		return s[:len(s)-6] + "+" + s[len(s)-5:]
	}
	return s
}

func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, fixRFC3339Plus(s))
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parseIntParam(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetMovementsHandler godoc
// @Summary Get product movement logs
// @Tags movements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/movements [get]
func GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if _, err := productRepo.GetForUser(ctx, auth.UserID(ctx), id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	var mf repo.MovementFilter
	if mf.Since, err = parseTimeParam(q.Get("since")); err != nil {
		http.Error(w, "invalid since date format", http.StatusBadRequest)
		return
	}
	if mf.Until, err = parseTimeParam(q.Get("until")); err != nil {
		http.Error(w, "invalid until date format", http.StatusBadRequest)
		return
	}
	if mf.Limit, err = parseIntParam(q.Get("limit")); err != nil || (mf.Limit != nil && *mf.Limit <= 0) {
		http.Error(w, "limit must be greater than zero", http.StatusBadRequest)
		return
	}
	if mf.Offset, err = parseIntParam(q.Get("offset")); err != nil || (mf.Offset != nil && *mf.Offset < 0) {
		http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
		return
	}

	movements, total, err := movementRepo.GetByProductID(ctx, id, mf)
	if err != nil {
		slog.Error("could not retrieve movements", "product_id", id, "error", err)
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	response := MovementsSearchResult{
		Data: make([]MovementResponse, len(movements)),
		Meta: Meta{TotalCount: total},
	}
	for i, m := range movements {
		response.Data[i] = MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Delta:     m.Delta,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, response)
}
