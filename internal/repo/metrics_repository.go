package repo

import "context"

type Metrics struct {
	TotalProducts       int      `json:"total_products"`
	LowStockCount       int      `json:"low_stock_count"`
	ExpiredCount        int      `json:"expired_count"`
	TotalBills          int      `json:"total_bills"`
	UnreadNotifications int      `json:"unread_notifications"`
	Categories          []string `json:"categories"`
}

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context, userID int) (Metrics, error)
}
