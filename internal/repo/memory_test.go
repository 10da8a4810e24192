package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/clock"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

func TestInMemoryProductRepository_Scoping(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryProductRepository()

	p, err := r.Create(ctx, models.Product{UserID: 1, SKU: "A", Name: "Apple"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Create(ctx, models.Product{UserID: 1, SKU: "A", Name: "Again"}); !errors.Is(err, ErrDuplicatedValueUnique) {
		t.Errorf("expected ErrDuplicatedValueUnique, got %v", err)
	}
	if _, err := r.Create(ctx, models.Product{UserID: 2, SKU: "A", Name: "Theirs"}); err != nil {
		t.Errorf("expected the same sku to be allowed for another user, got %v", err)
	}

	if _, err := r.GetForUser(ctx, 2, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound for another user, got %v", err)
	}
	if _, err := r.GetByID(ctx, p.ID); err != nil {
		t.Errorf("expected GetByID to ignore ownership, got %v", err)
	}
	if err := r.Delete(ctx, 2, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected delete by another user to fail, got %v", err)
	}
	if err := r.Delete(ctx, 1, p.ID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInMemoryProductRepository_AdjustQuantityAllowsNegative(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryProductRepository()
	p, _ := r.Create(ctx, models.Product{UserID: 1, SKU: "N", Name: "Nuts", Quantity: 2})

	got, err := r.AdjustQuantity(ctx, p.ID, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != -3 {
		t.Errorf("expected -3, got %d", got.Quantity)
	}
	if _, err := r.AdjustQuantity(ctx, 999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestInMemoryProductRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryProductRepository()
	for _, p := range []models.Product{
		{UserID: 1, SKU: "3", Name: "Zucchini", DisplayName: "Zucchini", Category: "veg"},
		{UserID: 1, SKU: "1", Name: "Apple", DisplayName: "Apple", Category: "fruit", Supplier: "Orchard"},
		{UserID: 1, SKU: "2", Name: "Kale", DisplayName: "Kale", Category: "Veg"},
		{UserID: 2, SKU: "1", Name: "Apricot", DisplayName: "Apricot", Category: "fruit"},
	} {
		r.Create(ctx, p)
	}

	tests := []struct {
		name string
		pf   ProductFilter
		want []string
	}{
		{"all sorted by display name", ProductFilter{}, []string{"Apple", "Kale", "Zucchini"}},
		{"category is case insensitive", ProductFilter{Category: "veg"}, []string{"Kale", "Zucchini"}},
		{"search matches supplier", ProductFilter{Search: "orch"}, []string{"Apple"}},
		{"no match", ProductFilter{Search: "mango"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := r.ListByUser(ctx, 1, tt.pf)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d products, got %d", len(tt.want), len(got))
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("expected %q at %d, got %q", name, i, got[i].Name)
				}
			}
		})
	}
}

func TestInMemoryNotificationRepository(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryNotificationRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first, _ := r.Create(ctx, models.Notification{UserID: 1, ProductID: 10, Message: `Product "Milk" has expired.`, Timestamp: base})
	second, _ := r.Create(ctx, models.Notification{UserID: 1, ProductID: 11, Message: "low", Timestamp: base.Add(time.Minute)})
	third, _ := r.Create(ctx, models.Notification{UserID: 1, ProductID: 10, Message: "low", Timestamp: base.Add(time.Minute)})
	r.Create(ctx, models.Notification{UserID: 2, ProductID: 10, Message: "theirs", Timestamp: base})

	list, _ := r.ListByUser(ctx, 1)
	if len(list) != 3 || list[0].ID != third.ID || list[1].ID != second.ID || list[2].ID != first.ID {
		t.Errorf("expected newest first with id tie-break, got %+v", list)
	}

	if ok, _ := r.ExistsForProductWithMessage(ctx, 10, "has expired"); !ok {
		t.Error("expected the expired notice to be found")
	}
	if ok, _ := r.ExistsForProductWithMessage(ctx, 11, "has expired"); ok {
		t.Error("expected no expired notice for product 11")
	}

	if err := r.MarkRead(ctx, 2, first.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound for another user, got %v", err)
	}
	r.MarkRead(ctx, 1, first.ID)
	if n, _ := r.CountUnread(ctx, 1); n != 2 {
		t.Errorf("expected 2 unread, got %d", n)
	}

	if n, _ := r.DeleteByProduct(ctx, 1, 10); n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	if theirs, _ := r.ListByUser(ctx, 2); len(theirs) != 1 {
		t.Errorf("expected the other user's notification to survive, got %d", len(theirs))
	}
	if n, _ := r.DeleteMany(ctx, []int{second.ID, 999}); n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
}

func TestInMemoryBillRepository_Filter(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryBillRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, d := range []time.Duration{0, -48 * time.Hour, -30 * 24 * time.Hour} {
		r.Create(ctx, models.Bill{UserID: 1, BillNumber: string(rune('a' + i)), Date: base.Add(d)})
	}
	if _, err := r.Create(ctx, models.Bill{UserID: 1, BillNumber: "a"}); !errors.Is(err, ErrDuplicatedValueUnique) {
		t.Errorf("expected duplicate bill number to fail, got %v", err)
	}

	since := base.Add(-72 * time.Hour)
	got, _ := r.ListByUser(ctx, 1, BillFilter{Since: &since})
	if len(got) != 2 || !got[0].Date.Equal(base) {
		t.Errorf("expected the two recent bills newest first, got %+v", got)
	}
	if n, _ := r.Count(ctx, 1); n != 3 {
		t.Errorf("expected 3 bills, got %d", n)
	}
	if n, _ := r.Count(ctx, 2); n != 0 {
		t.Errorf("expected no bills for another user, got %d", n)
	}
}

func TestInMemoryMovementRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryMovementRepository()
	for _, d := range []int{1, 2, 3, 4} {
		r.Log(ctx, 7, d, "manual")
	}
	r.Log(ctx, 8, 100, "manual")

	limit, offset := 2, 1
	got, total, _ := r.GetByProductID(ctx, 7, MovementFilter{Limit: &limit, Offset: &offset})
	if total != 4 {
		t.Errorf("expected total 4, got %d", total)
	}
	if len(got) != 2 || got[0].Delta != 3 || got[1].Delta != 2 {
		t.Errorf("unexpected page %+v", got)
	}

	offset = 10
	got, _, _ = r.GetByProductID(ctx, 7, MovementFilter{Offset: &offset})
	if len(got) != 0 {
		t.Errorf("expected an empty page past the end, got %d", len(got))
	}
}

func TestInMemoryMetricsRepository_ExpiredCountUsesCalendarDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	midnight := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	products := NewInMemoryProductRepository()
	for i, exp := range []time.Time{
		midnight,
		midnight.Add(10 * time.Hour),
		midnight.Add(-time.Second),
		midnight.AddDate(0, 0, 5),
	} {
		products.Create(ctx, models.Product{UserID: 1, SKU: fmt.Sprintf("E%d", i), Name: "Milk", ExpirationDate: &exp})
	}

	m := NewInMemoryMetricsRepository()
	m.SetRepositories(products, NewInMemoryBillRepository(), NewInMemoryNotificationRepository())
	m.SetClock(clock.NewFixed(now))

	got, err := m.GetDashboardMetrics(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExpiredCount != 1 {
		t.Errorf("expected only yesterday's product to count as expired, got %d", got.ExpiredCount)
	}
}

func TestInMemoryUserRepository_UpdateUser(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryUserRepository()
	alice, _ := r.CreateUser(ctx, models.User{Username: "alice", Contact: "+15550001", PasswordHash: "h"})
	r.CreateUser(ctx, models.User{Username: "bob", Contact: "+15550002"})

	alice.Username = "alicia"
	alice.Contact = "+15550009"
	got, err := r.UpdateUser(ctx, alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "alicia" || got.Contact != "+15550009" || got.PasswordHash != "h" {
		t.Errorf("unexpected user %+v", got)
	}
	if _, err := r.GetByUsername(ctx, "alicia"); err != nil {
		t.Errorf("expected lookup by the new username to work, got %v", err)
	}

	alice.Username = "bob"
	if _, err := r.UpdateUser(ctx, alice); !errors.Is(err, ErrDuplicatedValueUnique) {
		t.Errorf("expected ErrDuplicatedValueUnique, got %v", err)
	}
	if _, err := r.UpdateUser(ctx, models.User{ID: 99, Username: "ghost"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
