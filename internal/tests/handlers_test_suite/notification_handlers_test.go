package handlers_test_suite

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	handler "github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

func TestExpirySweepHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	mustCreateProduct(r, handler.ProductRequest{
		SKU: "MILK", Name: "Milk",
		ExpirationDate: timePtr(testClock.Now().AddDate(0, 0, 9)),
		Notify:         intPtr(10),
	})
	mustCreateProduct(r, handler.ProductRequest{
		SKU: "RICE", Name: "Rice",
		ExpirationDate: timePtr(testClock.Now().AddDate(0, 0, 90)),
		Notify:         intPtr(10),
	})

	w := doRequest(r, http.MethodGet, "/notifications/notify", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp handler.SweepResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.NotificationsSent != 1 {
		t.Errorf("expected 1 notification sent, got %d", resp.NotificationsSent)
	}

	bodies := sender.bodies()
	if len(bodies) != 1 || bodies[0] != `Product "Milk" will expire in 10 days.` {
		t.Errorf("unexpected sms bodies %v", bodies)
	}

	w = doRequest(r, http.MethodGet, "/notifications/notify", token, nil)
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.NotificationsSent != 0 {
		t.Errorf("expected the repeat sweep to be throttled, got %d", resp.NotificationsSent)
	}
}

func TestExpirySweepHandler_SMSFailureStillRecords(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	sender.reset(errors.New("provider down"))

	mustCreateProduct(r, handler.ProductRequest{
		SKU: "EGGS", Name: "Eggs",
		ExpirationDate: timePtr(testClock.Now().AddDate(0, 0, 2)),
		Notify:         intPtr(3),
	})

	w := doRequest(r, http.MethodGet, "/notifications/notify", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	list := listNotifications(r, token)
	if len(list) != 1 || list[0].Type != models.NotificationExpiry {
		t.Errorf("expected one expiry record despite the sms failure, got %+v", list)
	}
}

func TestReorderNotifyHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	empty := mustCreateProduct(r, handler.ProductRequest{SKU: "SOAP", Name: "Soap", Quantity: 0, ReorderLevel: 5})
	plenty := mustCreateProduct(r, handler.ProductRequest{SKU: "TEA", Name: "Tea", Quantity: 40, ReorderLevel: 5})

	tests := []struct {
		name       string
		req        handler.ReorderNotifyRequest
		bearer     string
		wantCode   int
		wantStatus string
		wantText   string
	}{
		{
			name:       "out of stock",
			req:        handler.ReorderNotifyRequest{ProductID: empty},
			bearer:     token,
			wantCode:   http.StatusOK,
			wantStatus: "sent",
			wantText:   `Dear "admin" your product "Soap" is out of stock reorder quickly`,
		},
		{
			name:       "throttled",
			req:        handler.ReorderNotifyRequest{ProductID: empty},
			bearer:     token,
			wantCode:   http.StatusOK,
			wantStatus: "skipped",
		},
		{
			name:       "forced bypasses throttle",
			req:        handler.ReorderNotifyRequest{ProductID: empty, ForceCheck: true},
			bearer:     token,
			wantCode:   http.StatusOK,
			wantStatus: "sent",
		},
		{
			name:       "snapshot below level",
			req:        handler.ReorderNotifyRequest{ProductID: plenty, Quantity: intPtr(3), ReorderLevel: intPtr(5)},
			bearer:     token,
			wantCode:   http.StatusOK,
			wantStatus: "sent",
			wantText:   "Current quantity: 3, Reorder level: 5",
		},
		{
			name:       "above level",
			req:        handler.ReorderNotifyRequest{ProductID: plenty, ForceCheck: true},
			bearer:     token,
			wantCode:   http.StatusOK,
			wantStatus: "above_level",
		},
		{
			name:     "unknown product",
			req:      handler.ReorderNotifyRequest{ProductID: 9999},
			bearer:   token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "another user's product",
			req:      handler.ReorderNotifyRequest{ProductID: empty},
			bearer:   otherToken,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/notifications/reorder-notify", tt.bearer, tt.req)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp handler.ReorderNotifyResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			if tt.wantText != "" && (resp.Notification == nil || !strings.Contains(resp.Notification.Message, tt.wantText)) {
				t.Errorf("expected message containing %q, got %+v", tt.wantText, resp.Notification)
			}
		})
	}
}

func TestReorderSweepHandler_Throttle(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	mustCreateProduct(r, handler.ProductRequest{SKU: "SALT", Name: "Salt", Quantity: 1, ReorderLevel: 5})

	sweep := func() int {
		w := doRequest(r, http.MethodGet, "/notifications/reorder-check", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var resp handler.SweepResponse
		json.NewDecoder(w.Body).Decode(&resp)
		return resp.NotificationsSent
	}

	if got := sweep(); got != 1 {
		t.Errorf("expected 1 notification, got %d", got)
	}
	if got := sweep(); got != 0 {
		t.Errorf("expected the cooldown to suppress the repeat, got %d", got)
	}

	testClock.Advance(time.Hour)
	t.Cleanup(func() { testClock.Advance(-time.Hour) })
	if got := sweep(); got != 1 {
		t.Errorf("expected a notification after the cooldown, got %d", got)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	a := mustCreateProduct(r, handler.ProductRequest{SKU: "A", Name: "Alpha", Quantity: 0, ReorderLevel: 1})
	mustCreateProduct(r, handler.ProductRequest{SKU: "B", Name: "Beta", Quantity: 0, ReorderLevel: 1})
	doRequest(r, http.MethodGet, "/notifications/reorder-check", token, nil)

	list := listNotifications(r, token)
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	again := listNotifications(r, token)
	if len(again) != len(list) || again[0].ID != list[0].ID {
		t.Errorf("expected listing to be repeatable, got %+v then %+v", list, again)
	}

	first := list[0].ID
	if w := doRequest(r, http.MethodPost, fmt.Sprintf("/notifications/%d/read", first), token, nil); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on mark read, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, fmt.Sprintf("/notifications/%d", first), otherToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting another user's notification, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, fmt.Sprintf("/notifications/%d", first), token, nil); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on delete, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, fmt.Sprintf("/notifications/%d", first), token, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on repeated delete, got %d", w.Code)
	}

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/notifications/by-product/%d", a), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var deleted handler.DeletedResult
	json.NewDecoder(w.Body).Decode(&deleted)

	remaining := listNotifications(r, token)
	for _, n := range remaining {
		if n.ProductID == a {
			t.Errorf("expected no notifications left for product %d", a)
		}
	}
	if len(remaining)+deleted.DeletedCount != 1 {
		t.Errorf("expected one notification deleted in total by product, got %d deleted and %d remaining", deleted.DeletedCount, len(remaining))
	}
}
