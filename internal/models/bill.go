package models

import "time"

// BillItem is a line of a bill. Totals are taken as supplied by the client.
type BillItem struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Total        float64 `json:"total"`
	ActualPrice  float64 `json:"actual_price"`
	SellingPrice float64 `json:"selling_price"`
}

type Bill struct {
	ID           int        `json:"id"`
	UserID       int        `json:"user_id"`
	CustomerName string     `json:"customer_name"`
	BillNumber   string     `json:"bill_number"`
	Date         time.Time  `json:"date"`
	Items        []BillItem `json:"items"`
	GrandTotal   float64    `json:"grand_total"`
	NetQuantity  int        `json:"net_quantity"`
}
