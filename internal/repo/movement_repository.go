package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type MovementRepository interface {
	Log(ctx context.Context, productID, delta int, reason string) error
	GetByProductID(ctx context.Context, productID int, mf MovementFilter) ([]models.Movement, int, error)
}

type MovementFilter struct {
	Since  *time.Time
	Until  *time.Time
	Offset *int
	Limit  *int
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
