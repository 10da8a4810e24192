package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

// ProductRepository defines the interface for product data operations.
//
// Methods taking a userID are tenant scoped. ListExpiring, ListWithReorderLevel,
// GetByID, AdjustQuantity and SetLastNotificationSent span all users and are
// used by the notification sweeps.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetByID(ctx context.Context, id int) (models.Product, error)
	GetForUser(ctx context.Context, userID, id int) (models.Product, error)
	ListByUser(ctx context.Context, userID int, pf ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, userID, id int) error

	ListExpiring(ctx context.Context) ([]models.Product, error)
	ListWithReorderLevel(ctx context.Context) ([]models.Product, error)
	IDsByUser(ctx context.Context, userID int) ([]int, error)
	Categories(ctx context.Context, userID int) ([]string, error)

	// AdjustQuantity applies delta without a floor check; stock may go negative.
	AdjustQuantity(ctx context.Context, id, delta int) (models.Product, error)
	SetLastNotificationSent(ctx context.Context, id int, at time.Time) error
}

type ProductFilter struct {
	Search   string
	Category string
}
