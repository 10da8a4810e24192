package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	"github.com/rogerio-castellano/stock-notifier/internal/billing"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

// CreateBillHandler godoc
// @Summary Create a bill
// @Description Saves the bill, decrements stock for each item and runs forced reorder checks.
// @Tags bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bill body BillRequest true "Bill to create"
// @Success 201 {object} models.Bill
// @Failure 400 {string} string "Invalid bill"
// @Failure 500 {string} string "Internal error"
// @Router /bills [post]
func CreateBillHandler(w http.ResponseWriter, r *http.Request) {
	var req BillRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	items := make([]models.BillItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.BillItem(it)
	}

	bill, err := billingService.CreateBill(r.Context(), auth.UserID(r.Context()), billing.NewBill{
		CustomerName: req.CustomerName,
		Items:        items,
	})
	if err != nil {
		if errors.Is(err, billing.ErrInvalidBill) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("failed to create bill", "error", err)
		http.Error(w, "failed to create bill", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

// ListBillsHandler godoc
// @Summary List the caller's bills, newest first
// @Tags bills
// @Produce json
// @Security BearerAuth
// @Param filter query string false "today, week, month or year"
// @Success 200 {object} BillsResult
// @Failure 400 {string} string "Unknown filter"
// @Failure 500 {string} string "Internal error"
// @Router /bills [get]
func ListBillsHandler(w http.ResponseWriter, r *http.Request) {
	bills, err := billingService.ListBills(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("filter"))
	if err != nil {
		if errors.Is(err, billing.ErrUnknownFilter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to fetch bills", http.StatusInternalServerError)
		return
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	writeJSON(w, http.StatusOK, BillsResult{Data: bills, Meta: Meta{TotalCount: len(bills)}})
}
