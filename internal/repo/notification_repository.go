package repo

import (
	"context"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID int) ([]models.Notification, error)
	ExistsForProductWithMessage(ctx context.Context, productID int, phrase string) (bool, error)
	Delete(ctx context.Context, userID, id int) error
	DeleteMany(ctx context.Context, ids []int) (int, error)
	DeleteByProduct(ctx context.Context, userID, productID int) (int, error)
	MarkRead(ctx context.Context, userID, id int) error
	CountUnread(ctx context.Context, userID int) (int, error)
}
