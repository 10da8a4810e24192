package repo

import (
	"context"
	"database/sql"
)

type PostgresMetricsRepository struct {
	db       *sql.DB
	products *PostgresProductRepository
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db, products: NewPostgresProductRepository(db)}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics(ctx context.Context, userID int) (Metrics, error) {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	var m Metrics
	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM products WHERE user_id = $1`, &m.TotalProducts},
		{`SELECT COUNT(*) FROM products WHERE user_id = $1 AND quantity <= reorder_level`, &m.LowStockCount},
		{`SELECT COUNT(*) FROM products WHERE user_id = $1 AND expiration_date < date_trunc('day', NOW())`, &m.ExpiredCount},
		{`SELECT COUNT(*) FROM bills WHERE user_id = $1`, &m.TotalBills},
		{`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, &m.UnreadNotifications},
	}
	for _, q := range queries {
		if err := r.db.QueryRowContext(qctx, q.query, userID).Scan(q.dest); err != nil {
			return m, err
		}
	}

	categories, err := r.products.Categories(ctx, userID)
	if err != nil {
		return m, err
	}
	m.Categories = categories
	return m, nil
}
