package ports

import (
	"context"

	"github.com/orderhub/platform/internal/auth"
	"github.com/orderhub/platform/internal/core/domain"
)

// OrderItemInput is a single line of a new order.
type OrderItemInput struct {
	Product string
	Qty     int
}

// CreateOrderInput carries the data needed to create an order. UserID is the
// authenticated caller; the created order is always owned by them.
type CreateOrderInput struct {
	UserID string
	Items  []OrderItemInput
	Total  float64
}

// ListOrdersInput carries parameters for listing the caller's own orders.
type ListOrdersInput struct {
	UserID string
	Page   int
	Limit  int
	Sort   string // "asc" or "desc" on creation time; default "desc"
}

// ListOrdersResult is returned by ListOrders.
type ListOrdersResult struct {
	Items      []*domain.Order
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// OrderService defines order use-cases. Get and UpdateStatus enforce the
// owner-or-admin policy against the caller identity.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string, caller auth.Identity) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string, caller auth.Identity) (*domain.Order, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersResult, error)
}
