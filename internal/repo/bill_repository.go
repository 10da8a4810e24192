package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type BillRepository interface {
	Create(ctx context.Context, bill models.Bill) (models.Bill, error)
	// ListByUser returns the user's bills, newest first.
	ListByUser(ctx context.Context, userID int, bf BillFilter) ([]models.Bill, error)
	Count(ctx context.Context, userID int) (int, error)
}

type BillFilter struct {
	Since *time.Time
	Until *time.Time
}

func (bf BillFilter) matches(t time.Time) bool {
	if bf.Since != nil && t.Before(*bf.Since) {
		return false
	}
	if bf.Until != nil && t.After(*bf.Until) {
		return false
	}
	return true
}
