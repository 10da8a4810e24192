package handlers

import (
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type ProductRequest struct {
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	DisplayName    string     `json:"display_name"`
	Category       string     `json:"category"`
	Supplier       string     `json:"supplier"`
	ActualPrice    float64    `json:"actual_price"`
	SellingPrice   float64    `json:"selling_price"`
	Quantity       int        `json:"quantity"`
	ReorderLevel   int        `json:"reorder_level"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Notify         *int       `json:"notify,omitempty"`
}

type ProductResponse struct {
	Id                   int        `json:"id"`
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
	LowStock             bool       `json:"low_stock,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Id:                   p.ID,
		SKU:                  p.SKU,
		Name:                 p.Name,
		DisplayName:          p.DisplayName,
		Category:             p.Category,
		Supplier:             p.Supplier,
		ActualPrice:          p.ActualPrice,
		SellingPrice:         p.SellingPrice,
		Quantity:             p.Quantity,
		ReorderLevel:         p.ReorderLevel,
		ExpirationDate:       p.ExpirationDate,
		Notify:               p.Notify,
		LastNotificationSent: p.LastNotificationSent,
		LowStock:             p.BelowReorderLevel(),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta,omitempty"`
}

type MovementResponse struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

type MovementsSearchResult struct {
	Data []MovementResponse `json:"data"`
	Meta Meta               `json:"meta,omitempty"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Contact  string `json:"contact,omitempty"`
}

type LoginResult struct {
	Token string `json:"token"`
}

type RegisterResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ProfileUpdateRequest leaves a field unchanged when it is blank.
type ProfileUpdateRequest struct {
	Username string `json:"username,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

type ProfileUpdateResult struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

type BillItemRequest struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Total        float64 `json:"total"`
	ActualPrice  float64 `json:"actual_price"`
	SellingPrice float64 `json:"selling_price"`
}

type BillRequest struct {
	CustomerName string            `json:"customer_name"`
	Items        []BillItemRequest `json:"items"`
}

type BillsResult struct {
	Data []models.Bill `json:"data"`
	Meta Meta          `json:"meta"`
}

// SweepResponse summarizes a notification sweep.
type SweepResponse struct {
	Message           string `json:"message"`
	NotificationsSent int    `json:"notifications_sent"`
	Failed            int    `json:"failed"`
}

type ReorderNotifyRequest struct {
	ProductID    int  `json:"product_id"`
	Quantity     *int `json:"quantity"`
	ReorderLevel *int `json:"reorder_level"`
	ForceCheck   bool `json:"force_check"`
}

type ReorderNotifyResponse struct {
	Status       string               `json:"status"`
	Message      string               `json:"message"`
	SMSDelivered bool                 `json:"sms_delivered"`
	Notification *models.Notification `json:"notification,omitempty"`
}

type DeletedResult struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}
