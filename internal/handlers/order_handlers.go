package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"shopmart/internal/common"
	"shopmart/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	order, err := h.orderService.CreateOrder(ctx, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return common.SendValidationError(c, "items", "cart must not be empty")
		case errors.Is(err, services.ErrAddressNotOwned):
			return common.SendValidationError(c, "address_id", "address not found for user")
		case errors.Is(err, services.ErrPriceMismatch):
			return common.SendValidationError(c, "items", err.Error())
		default:
			return common.SendServerError(c, "Failed to create order")
		}
	}

	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orderID := c.Param("id")
	if orderID == "" {
		return common.SendValidationError(c, "id", "order id is required")
	}

	detail, err := h.orderService.GetOrderByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Order")
		}
		return common.SendServerError(c, "Failed to fetch order")
	}

	return c.JSON(http.StatusOK, detail)
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	orders, err := h.orderService.ListOrders(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list orders")
	}

	return c.JSON(http.StatusOK, orders)
}
