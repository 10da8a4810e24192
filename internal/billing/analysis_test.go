package billing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

func (f *fixture) pricedProduct(t *testing.T, sku, display, category string, actual float64) models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), models.Product{
		UserID: 1, SKU: sku, Name: sku, DisplayName: display, Category: category,
		ActualPrice: actual, Quantity: 100,
	})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return p
}

func (f *fixture) billAt(t *testing.T, userID int, date time.Time, items ...models.BillItem) {
	t.Helper()
	if _, err := f.bills.Create(context.Background(), models.Bill{
		UserID: userID, CustomerName: "Acme", BillNumber: date.String() + items[0].ProductName,
		Date: date, Items: items,
	}); err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAnalysis_GroupsByDisplayNameAndSortsByProfit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pen := f.pricedProduct(t, "PEN-1", "Blue Pen", "stationery", 1)
	penBox := f.pricedProduct(t, "PEN-2", "  blue pen ", "stationery", 1)
	mug := f.pricedProduct(t, "MUG", "Mug", "kitchen", 4)

	f.billAt(t, 1, testNow.Add(-time.Hour),
		models.BillItem{ProductID: pen.ID, ProductName: "a", Quantity: 3, ActualPrice: 1, SellingPrice: 2},
		models.BillItem{ProductID: mug.ID, ProductName: "b", Quantity: 1, ActualPrice: 4, SellingPrice: 10},
	)
	f.billAt(t, 1, testNow.Add(-2*time.Hour),
		models.BillItem{ProductID: penBox.ID, ProductName: "c", Quantity: 2, SellingPrice: 3},
	)
	f.billAt(t, 2, testNow.Add(-time.Hour),
		models.BillItem{ProductID: mug.ID, ProductName: "d", Quantity: 50, ActualPrice: 4, SellingPrice: 10},
	)

	got, err := f.service.Analysis(ctx, 1, AnalysisFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// pens: 3*(2-1) + 2*(3-1) = 7, mug: 1*(10-4) = 6
	if !approx(got.TotalProfit, 13) {
		t.Errorf("expected total profit 13, got %v", got.TotalProfit)
	}
	if len(got.TopProducts) != 2 {
		t.Fatalf("expected 2 groups, got %+v", got.TopProducts)
	}
	first := got.TopProducts[0]
	if first.DisplayName != "Blue Pen" || first.ProductCount != 5 || !approx(first.TotalProfit, 7) || !approx(first.Revenue, 12) {
		t.Errorf("unexpected first group %+v", first)
	}
	if got.TopProducts[1].DisplayName != "Mug" || !approx(got.TopProducts[1].TotalProfit, 6) {
		t.Errorf("unexpected second group %+v", got.TopProducts[1])
	}
}

func TestAnalysis_Filters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pen := f.pricedProduct(t, "PEN", "Pen", "stationery", 1)
	mug := f.pricedProduct(t, "MUG", "Mug", "kitchen", 4)

	f.billAt(t, 1, testNow.AddDate(0, 0, -10), models.BillItem{ProductID: pen.ID, ProductName: "a", Quantity: 1, ActualPrice: 1, SellingPrice: 2})
	f.billAt(t, 1, testNow.AddDate(0, -2, 0), models.BillItem{ProductID: mug.ID, ProductName: "b", Quantity: 1, ActualPrice: 4, SellingPrice: 14})
	f.billAt(t, 1, testNow.AddDate(-2, 0, 0), models.BillItem{ProductID: pen.ID, ProductName: "c", Quantity: 1, ActualPrice: 1, SellingPrice: 101})
	f.billAt(t, 1, testNow.AddDate(0, 0, -1), models.BillItem{ProductID: 999, ProductName: "gone", Quantity: 1, SellingPrice: 1000})

	from := testNow.AddDate(0, -3, 0)
	to := testNow.AddDate(0, -1, 0)

	tests := []struct {
		name   string
		filter AnalysisFilter
		want   float64
	}{
		{name: "default is one month", filter: AnalysisFilter{}, want: 1},
		{name: "3m", filter: AnalysisFilter{Range: "3m"}, want: 11},
		{name: "1y", filter: AnalysisFilter{Range: "1y"}, want: 11},
		{name: "3y", filter: AnalysisFilter{Range: "3y"}, want: 111},
		{name: "all", filter: AnalysisFilter{Range: "all"}, want: 111},
		{name: "explicit dates win over range", filter: AnalysisFilter{Range: "all", From: &from, To: &to}, want: 10},
		{name: "category", filter: AnalysisFilter{Range: "all", Category: "stationery"}, want: 101},
		{name: "category all", filter: AnalysisFilter{Range: "all", Category: "all"}, want: 111},
		{name: "unknown category", filter: AnalysisFilter{Range: "all", Category: "garden"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.service.Analysis(ctx, 1, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approx(got.TotalProfit, tt.want) {
				t.Errorf("expected total profit %v, got %v", tt.want, got.TotalProfit)
			}
			if got.TopProducts == nil {
				t.Error("expected a non-nil product list")
			}
		})
	}
}

func TestAnalysis_InvalidWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Analysis(ctx, 1, AnalysisFilter{Range: "2w"}); !errors.Is(err, ErrUnknownRange) {
		t.Errorf("expected ErrUnknownRange, got %v", err)
	}

	from, to := testNow, testNow.AddDate(0, -1, 0)
	if _, err := f.service.Analysis(ctx, 1, AnalysisFilter{From: &from, To: &to}); !errors.Is(err, ErrUnknownRange) {
		t.Errorf("expected ErrUnknownRange for reversed dates, got %v", err)
	}
}
