package ports

import (
	"context"
	"time"

	"github.com/orderhub/platform/internal/core/domain"
)

// ListOrdersFilter carries the query parameters for listing a user's orders.
type ListOrdersFilter struct {
	UserID    string
	Page      int  // 1-based
	Limit     int  // rows per page
	Ascending bool // sort on created_at; false = newest first
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (*domain.Order, error)
	// ListByUser returns a page of the user's orders and the total count.
	ListByUser(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
}
