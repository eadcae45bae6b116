package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/core/domain"
	"github.com/orderhub/platform/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// --- Request / Response types ---

type orderItemRequest struct {
	Product string `json:"product" validate:"required"`
	Qty     int    `json:"qty"     validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total float64            `json:"total" validate:"required,gt=0"`
}

type updateOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderView struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Items     []domain.OrderItem `json:"items"`
	Status    string             `json:"status"`
	Total     float64            `json:"total"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type orderListResponse struct {
	Items      []orderView `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func toOrderView(o *domain.Order) orderView {
	return orderView{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     o.Items,
		Status:    string(o.Status),
		Total:     o.Total,
		CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: o.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// Create creates a new order owned by the caller.
//
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, err.Error())
	}

	items := make([]ports.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.OrderItemInput{Product: it.Product, Qty: it.Qty})
	}

	order, err := h.service.CreateOrder(c.Request().Context(), ports.CreateOrderInput{
		UserID: identity.UserID,
		Items:  items,
		Total:  req.Total,
	})
	if err != nil {
		return err
	}

	return response.OK(c, http.StatusCreated, toOrderView(order))
}

// Get returns a single order, owner-or-admin.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Order id"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrder(c.Request().Context(), c.Param("id"), identity)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, toOrderView(order))
}

// UpdateStatus patches an order's status, owner-or-admin.
//
// @Summary      Update order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Order id"
// @Param        body  body      updateOrderRequest  true  "New status"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /v1/orders/{id} [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, err.Error())
	}

	order, err := h.service.UpdateOrderStatus(c.Request().Context(), c.Param("id"), req.Status, identity)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, toOrderView(order))
}

// List returns a page of the caller's own orders.
//
// @Summary      List own orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int     false  "Page (1-based)"
// @Param        limit  query     int     false  "Page size (clamped 1-100)"
// @Param        sort   query     string  false  "asc or desc on creation time"
// @Success      200    {object}  response.Envelope
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListOrders(c.Request().Context(), ports.ListOrdersInput{
		UserID: identity.UserID,
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", defaultPageLimit),
		Sort:   c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}

	items := make([]orderView, 0, len(result.Items))
	for _, o := range result.Items {
		items = append(items, toOrderView(o))
	}

	return response.OK(c, http.StatusOK, orderListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}
