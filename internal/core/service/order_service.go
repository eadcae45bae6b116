package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orderhub/platform/internal/api/metrics"
	"github.com/orderhub/platform/internal/auth"
	"github.com/orderhub/platform/internal/core/domain"
	"github.com/orderhub/platform/internal/core/ports"
)

// OrderService implements order use-cases and enforces the owner-or-admin
// policy on single-order access.
type OrderService struct {
	repo   ports.OrderRepository
	logger zerolog.Logger
}

func NewOrderService(repo ports.OrderRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// CreateOrder creates an order owned by the caller with status "created".
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	now := time.Now().UTC()

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		items = append(items, domain.OrderItem{Product: it.Product, Qty: it.Qty})
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Items:     items,
		Status:    domain.OrderCreated,
		Total:     input.Total,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create order")
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info().Str("order_id", order.ID).Str("user_id", order.UserID).Msg("order created")
	// Hook point for the order.created domain event; no event pipeline exists.
	s.logger.Debug().Str("order_id", order.ID).Msg("order.created event suppressed")

	return order, nil
}

// GetOrder returns a single order when the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, caller auth.Identity) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, order.UserID) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// UpdateOrderStatus sets a new status on an order, restricted to the fixed
// status enumeration and to the owner-or-admin policy.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string, caller auth.Identity) (*domain.Order, error) {
	next := domain.OrderStatus(status)
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, order.UserID) {
		return nil, domain.ErrForbidden
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, next, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info().Str("order_id", orderID).Str("status", status).Msg("order status updated")
	return updated, nil
}

// ListOrders returns a page of the caller's own orders sorted on creation
// time. Sort "asc" is oldest first; anything else is newest first.
func (s *OrderService) ListOrders(ctx context.Context, input ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	page := clampPage(input.Page)
	limit := clampLimit(input.Limit)

	items, total, err := s.repo.ListByUser(ctx, ports.ListOrdersFilter{
		UserID:    input.UserID,
		Page:      page,
		Limit:     limit,
		Ascending: input.Sort == "asc",
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListOrdersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
