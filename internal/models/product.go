package models

import "time"

// Product represents a stock item owned by a single user.
type Product struct {
	ID                   int        `json:"id"`
	UserID               int        `json:"user_id"`
	SKU                  string     `json:"sku"`
	Name                 string     `json:"name"`
	DisplayName          string     `json:"display_name"`
	Category             string     `json:"category"`
	Supplier             string     `json:"supplier"`
	ActualPrice          float64    `json:"actual_price"`
	SellingPrice         float64    `json:"selling_price"`
	Quantity             int        `json:"quantity"`
	ReorderLevel         int        `json:"reorder_level"`
	ExpirationDate       *time.Time `json:"expiration_date,omitempty"`
	Notify               *int       `json:"notify,omitempty"`
	LastNotificationSent *time.Time `json:"last_notification_sent,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BelowReorderLevel reports whether the stock is at or below the reorder threshold.
func (p Product) BelowReorderLevel() bool {
	return p.Quantity <= p.ReorderLevel
}
