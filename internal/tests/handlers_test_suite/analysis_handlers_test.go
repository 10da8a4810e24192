package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rogerio-castellano/stock-notifier/internal/billing"
	handler "github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
)

func TestProductAnalysisHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	pen := mustCreateProduct(r, handler.ProductRequest{SKU: "PEN", Name: "Pen", DisplayName: "Gel Pen", Category: "stationery", ActualPrice: 1, Quantity: 50})
	mug := mustCreateProduct(r, handler.ProductRequest{SKU: "MUG", Name: "Mug", Category: "kitchen", ActualPrice: 4, Quantity: 50})

	w := doRequest(r, http.MethodPost, "/bills", token, handler.BillRequest{
		CustomerName: "Ada",
		Items: []handler.BillItemRequest{
			{ProductID: pen, ProductName: "Pen", Quantity: 4, Price: 3, Total: 12, ActualPrice: 1, SellingPrice: 3},
			{ProductID: mug, ProductName: "Mug", Quantity: 1, Price: 9, Total: 9, ActualPrice: 4, SellingPrice: 9},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name       string
		query      string
		bearer     string
		wantCode   int
		wantProfit float64
		wantTop    string
	}{
		{name: "default range", query: "", bearer: token, wantCode: http.StatusOK, wantProfit: 13, wantTop: "Gel Pen"},
		{name: "category", query: "?range=all&category=kitchen", bearer: token, wantCode: http.StatusOK, wantProfit: 5, wantTop: "Mug"},
		{name: "dates before the bill", query: "?fromDate=2001-01-01&toDate=2001-12-31", bearer: token, wantCode: http.StatusOK, wantProfit: 0},
		{name: "other user sees nothing", query: "?range=all", bearer: otherToken, wantCode: http.StatusOK, wantProfit: 0},
		{name: "unknown range", query: "?range=2w", bearer: token, wantCode: http.StatusBadRequest},
		{name: "bad date", query: "?fromDate=yesterday&toDate=2001-12-31", bearer: token, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/products/analysis"+tt.query, tt.bearer, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp billing.Analysis
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			if resp.TotalProfit != tt.wantProfit {
				t.Errorf("expected total profit %v, got %v", tt.wantProfit, resp.TotalProfit)
			}
			if tt.wantTop == "" {
				if len(resp.TopProducts) != 0 {
					t.Errorf("expected no products, got %+v", resp.TopProducts)
				}
				return
			}
			if len(resp.TopProducts) == 0 || resp.TopProducts[0].DisplayName != tt.wantTop {
				t.Errorf("expected %q first, got %+v", tt.wantTop, resp.TopProducts)
			}
		})
	}
}
