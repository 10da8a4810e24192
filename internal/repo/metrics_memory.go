package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/clock"
)

type InMemoryMetricsRepository struct {
	productRepo      ProductRepository
	billRepo         BillRepository
	notificationRepo NotificationRepository
	clock            clock.Clock
}

func NewInMemoryMetricsRepository() *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{clock: clock.Real{}}
}

func (i *InMemoryMetricsRepository) SetClock(c clock.Clock) {
	i.clock = c
}

func (i *InMemoryMetricsRepository) SetRepositories(
	productRepo ProductRepository,
	billRepo BillRepository,
	notificationRepo NotificationRepository,
) {
	i.productRepo = productRepo
	i.billRepo = billRepo
	i.notificationRepo = notificationRepo
}

// GetDashboardMetrics implements MetricsRepository.
func (i *InMemoryMetricsRepository) GetDashboardMetrics(ctx context.Context, userID int) (Metrics, error) {
	m := Metrics{}

	products, err := i.productRepo.ListByUser(ctx, userID, ProductFilter{})
	if err != nil {
		return m, err
	}
	m.TotalProducts = len(products)

	// A product expires once its calendar date has passed, not at the exact timestamp.
	today := startOfDay(i.clock.Now())
	for _, p := range products {
		if p.BelowReorderLevel() {
			m.LowStockCount++
		}
		if p.ExpirationDate != nil && p.ExpirationDate.Before(today) {
			m.ExpiredCount++
		}
	}

	if m.TotalBills, err = i.billRepo.Count(ctx, userID); err != nil {
		return m, err
	}
	if m.UnreadNotifications, err = i.notificationRepo.CountUnread(ctx, userID); err != nil {
		return m, err
	}
	if m.Categories, err = i.productRepo.Categories(ctx, userID); err != nil {
		return m, err
	}
	return m, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
