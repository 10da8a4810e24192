package handlers_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	handler "github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

func TestCreateBillHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	pens := mustCreateProduct(r, handler.ProductRequest{SKU: "PEN", Name: "Pens", Quantity: 10, ReorderLevel: 3})
	paper := mustCreateProduct(r, handler.ProductRequest{SKU: "PAPER", Name: "Paper", Quantity: 50, ReorderLevel: 5})

	w := doRequest(r, http.MethodPost, "/bills", token, handler.BillRequest{
		CustomerName: "  Ada  ",
		Items: []handler.BillItemRequest{
			{ProductID: pens, ProductName: "Pens", Quantity: 8, Price: 2, Total: 16},
			{ProductID: paper, ProductName: "Paper", Quantity: 5, Price: 4, Total: 20},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var bill models.Bill
	if err := json.NewDecoder(w.Body).Decode(&bill); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if bill.CustomerName != "Ada" || bill.GrandTotal != 36 || bill.NetQuantity != 13 {
		t.Errorf("unexpected bill %+v", bill)
	}
	if !strings.HasPrefix(bill.BillNumber, "BILL-") {
		t.Errorf("unexpected bill number %q", bill.BillNumber)
	}

	for id, want := range map[int]int{pens: 2, paper: 45} {
		w := doRequest(r, http.MethodGet, fmt.Sprintf("/products/%d", id), token, nil)
		var p handler.ProductResponse
		json.NewDecoder(w.Body).Decode(&p)
		if p.Quantity != want {
			t.Errorf("expected quantity %d for product %d, got %d", want, id, p.Quantity)
		}
	}

	found := false
	for _, body := range sender.bodies() {
		if strings.Contains(body, `"Pens" is running low`) && strings.Contains(body, "Current quantity: 2, Reorder level: 3") {
			found = true
		}
		if strings.Contains(body, "Paper") {
			t.Errorf("unexpected reorder message for a product above its level: %q", body)
		}
	}
	if !found {
		t.Errorf("expected a low stock message for Pens, got %v", sender.bodies())
	}

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/products/%d/movements", pens), token, nil)
	var movements handler.MovementsSearchResult
	json.NewDecoder(w.Body).Decode(&movements)
	if len(movements.Data) != 1 || movements.Data[0].Delta != -8 || movements.Data[0].Reason != "bill:"+bill.BillNumber {
		t.Errorf("unexpected movements %+v", movements.Data)
	}
}

func TestCreateBillHandler_ForcedCheckIgnoresThrottle(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	id := mustCreateProduct(r, handler.ProductRequest{SKU: "INK", Name: "Ink", Quantity: 3, ReorderLevel: 5})
	doRequest(r, http.MethodGet, "/notifications/reorder-check", token, nil)
	sender.reset(nil)

	w := doRequest(r, http.MethodPost, "/bills", token, handler.BillRequest{
		CustomerName: "Grace",
		Items:        []handler.BillItemRequest{{ProductID: id, Quantity: 3}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d", w.Code)
	}

	bodies := sender.bodies()
	if len(bodies) == 0 || bodies[0] != `Dear "admin" your product "Ink" is out of stock reorder quickly` {
		t.Errorf("expected an out of stock message despite the throttle, got %v", bodies)
	}
}

func TestCreateBillHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	id := mustCreateProduct(r, handler.ProductRequest{SKU: "CUP", Name: "Cups", Quantity: 5})

	tests := []struct {
		name string
		req  handler.BillRequest
	}{
		{"missing customer", handler.BillRequest{Items: []handler.BillItemRequest{{ProductID: id, Quantity: 1}}}},
		{"no items", handler.BillRequest{CustomerName: "Linus"}},
		{"zero quantity", handler.BillRequest{CustomerName: "Linus", Items: []handler.BillItemRequest{{ProductID: id}}}},
		{"missing product", handler.BillRequest{CustomerName: "Linus", Items: []handler.BillItemRequest{{Quantity: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/bills", token, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400 Bad Request, got %d", w.Code)
			}
		})
	}

	w := doRequest(r, http.MethodGet, fmt.Sprintf("/products/%d", id), token, nil)
	var p handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&p)
	if p.Quantity != 5 {
		t.Errorf("expected stock untouched by rejected bills, got %d", p.Quantity)
	}
}

func TestListBillsHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	id := mustCreateProduct(r, handler.ProductRequest{SKU: "BOX", Name: "Boxes", Quantity: 100})
	for _, customer := range []string{"first", "second"} {
		w := doRequest(r, http.MethodPost, "/bills", token, handler.BillRequest{
			CustomerName: customer,
			Items:        []handler.BillItemRequest{{ProductID: id, Quantity: 1, Total: 1}},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 Created, got %d", w.Code)
		}
	}

	tests := []struct {
		query     string
		wantCode  int
		wantCount int
	}{
		{"", http.StatusOK, 2},
		{"?filter=all", http.StatusOK, 2},
		{"?filter=today", http.StatusOK, 2},
		{"?filter=year", http.StatusOK, 2},
		{"?filter=decade", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/bills"+tt.query, token, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp handler.BillsResult
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Meta.TotalCount != tt.wantCount || len(resp.Data) != tt.wantCount {
				t.Errorf("expected %d bills, got %d", tt.wantCount, resp.Meta.TotalCount)
			}
		})
	}

	w := doRequest(r, http.MethodGet, "/bills", otherToken, nil)
	var resp handler.BillsResult
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Meta.TotalCount != 0 {
		t.Errorf("expected another user to see no bills, got %d", resp.Meta.TotalCount)
	}
}

func TestCreateBillHandler_SuppressesScheduledReorderSweep(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	id := mustCreateProduct(r, handler.ProductRequest{SKU: "TAPE", Name: "Tape", Quantity: 20})
	doRequest(r, http.MethodPost, "/bills", token, handler.BillRequest{
		CustomerName: "Ken",
		Items:        []handler.BillItemRequest{{ProductID: id, Quantity: 1}},
	})

	if _, ok, _ := activity.Get(t.Context(), "bill:last_created"); !ok {
		t.Errorf("expected the bill activity marker to be set")
	}
}
