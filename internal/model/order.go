package model

import "time"

// Order statuses. Transitions are driven by admins through the order
// status endpoint; placement always starts at pending.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order mirrors the `orders` table plus its `order_items` rows.
type Order struct {
	ID              uint64      `json:"id"`
	UserID          uint64      `json:"user_id"`
	Status          string      `json:"status"`
	TotalCents      uint64      `json:"total_cents"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderItem is one line of an order. UnitPriceCents is captured at
// placement time so later catalog price changes do not rewrite history.
type OrderItem struct {
	ProductID      uint64 `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
}
