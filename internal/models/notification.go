package models

import "time"

type NotificationType string

const (
	NotificationExpiry  NotificationType = "expiry"
	NotificationReorder NotificationType = "reorder"
)

type Notification struct {
	ID          int              `json:"id"`
	UserID      int              `json:"user_id"`
	ProductID   int              `json:"product_id"`
	ProductName string           `json:"product_name"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
}
