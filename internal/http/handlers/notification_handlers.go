package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
)

// RunExpirySweepHandler godoc
// @Summary Run the expiry notification sweep now
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SweepResponse
// @Failure 500 {string} string "Internal error"
// @Router /notifications/notify [get]
func RunExpirySweepHandler(w http.ResponseWriter, r *http.Request) {
	result, err := dispatcher.RunExpirySweep(r.Context())
	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
		http.Error(w, "failed to process notifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{
		Message:           "expiry notifications processed",
		NotificationsSent: result.NotificationsSent(),
		Failed:            result.Failed(),
	})
}

// RunReorderSweepHandler godoc
// @Summary Run the reorder notification sweep now
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SweepResponse
// @Failure 500 {string} string "Internal error"
// @Router /notifications/reorder-check [get]
func RunReorderSweepHandler(w http.ResponseWriter, r *http.Request) {
	result, err := dispatcher.RunReorderSweep(r.Context())
	if err != nil {
		slog.Error("reorder sweep failed", "error", err)
		http.Error(w, "failed to process reorder notifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{
		Message:           "reorder notifications processed",
		NotificationsSent: result.NotificationsSent(),
		Failed:            result.Failed(),
	})
}

var reorderStatusMessages = map[notify.Status]string{
	notify.StatusSent:       "reorder notification sent",
	notify.StatusSkipped:    "notification skipped - interval not met",
	notify.StatusAboveLevel: "quantity above reorder level, no notification needed",
}

// ReorderNotifyHandler godoc
// @Summary Evaluate one product against a stock snapshot
// @Description Quantity and reorder level default to the stored values when omitted.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param check body ReorderNotifyRequest true "Snapshot to evaluate"
// @Success 200 {object} ReorderNotifyResponse
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Failure 500 {string} string "Internal error"
// @Router /notifications/reorder-notify [post]
func ReorderNotifyHandler(w http.ResponseWriter, r *http.Request) {
	var req ReorderNotifyRequest
	if err := readJSON(w, r, &req); err != nil || req.ProductID <= 0 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	product, err := productRepo.GetForUser(ctx, auth.UserID(ctx), req.ProductID)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to process reorder notification", http.StatusInternalServerError)
		return
	}

	check := notify.ReorderCheck{
		ProductID:    product.ID,
		Quantity:     product.Quantity,
		ReorderLevel: product.ReorderLevel,
		ForceCheck:   req.ForceCheck,
	}
	if req.Quantity != nil {
		check.Quantity = *req.Quantity
	}
	if req.ReorderLevel != nil {
		check.ReorderLevel = *req.ReorderLevel
	}

	outcome, err := dispatcher.CheckReorderForProduct(ctx, check)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		slog.Error("reorder notification failed", "product_id", req.ProductID, "error", err)
		http.Error(w, "failed to process reorder notification", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ReorderNotifyResponse{
		Status:       string(outcome.Status),
		Message:      reorderStatusMessages[outcome.Status],
		SMSDelivered: outcome.SMSDelivered,
		Notification: outcome.Notification,
	})
}

// ListNotificationsHandler godoc
// @Summary List the caller's notifications, newest first
// @Description Notifications of products that no longer exist are removed first.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Failure 500 {string} string "Internal error"
// @Router /notifications [get]
func ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	notifications, err := dispatcher.ListNotifications(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		slog.Error("failed to list notifications", "error", err)
		http.Error(w, "failed to fetch notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// DeleteNotificationHandler godoc
// @Summary Delete one notification
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /notifications/{id} [delete]
func DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := dispatcher.DeleteNotification(r.Context(), auth.UserID(r.Context()), id); err != nil {
		if errors.Is(err, repo.ErrNotificationNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete notification", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkNotificationReadHandler godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "Marked as read"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /notifications/{id}/read [post]
func MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := dispatcher.MarkRead(r.Context(), auth.UserID(r.Context()), id); err != nil {
		if errors.Is(err, repo.ErrNotificationNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update notification", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProductNotificationsHandler godoc
// @Summary Delete every notification of one product
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param productId path int true "Product ID"
// @Success 200 {object} DeletedResult
// @Failure 400 {string} string "Invalid ID"
// @Failure 500 {string} string "Internal error"
// @Router /notifications/by-product/{productId} [delete]
func DeleteProductNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := urlParamID(r, "productId")
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	deleted, err := dispatcher.DeleteNotificationsForProduct(r.Context(), auth.UserID(r.Context()), productID)
	if err != nil {
		http.Error(w, "failed to delete notifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, DeletedResult{
		Message:      "notifications deleted",
		DeletedCount: deleted,
	})
}
