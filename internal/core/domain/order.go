package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "created"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the fixed order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCreated, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is a single line of an order.
type OrderItem struct {
	Product string `json:"product"`
	Qty     int    `json:"qty"`
}

// Order is the core aggregate root. UserID identifies the owning account and
// is the basis of the owner-or-admin access decision.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
