package handlers

import (
	"errors"
	"net/http"

	"shopmart/internal/common"
	"shopmart/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// PaymentHandlers handles HTTP requests for the payment round trip
type PaymentHandlers struct {
	paymentService services.PaymentServiceInterface
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(paymentService services.PaymentServiceInterface) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService: paymentService,
	}
}

// CreateIntent handles POST /payments/intent
func (h *PaymentHandlers) CreateIntent(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.OrderID == "" {
		return common.SendValidationError(c, "order_id", "order id is required")
	}

	attempt, err := h.paymentService.CreateIntent(ctx, userID, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "Order")
		case errors.Is(err, services.ErrGatewayUnavailable):
			return c.JSON(http.StatusBadGateway, common.CreateErrorResponse("GATEWAY_UNAVAILABLE", "Payment gateway unavailable, please retry checkout", nil))
		default:
			return common.SendServerError(c, "Failed to create payment intent")
		}
	}

	return c.JSON(http.StatusCreated, attempt)
}

// Callback handles POST /payments/callback, the gateway's signed proof of
// payment. A captured-but-unreconciled payment answers 202 so the gateway
// does not replay the callback while an operator resolves the order.
func (h *PaymentHandlers) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	var callback services.PaymentCallback
	if err := c.Bind(&callback); err != nil {
		return common.SendClientError(c, "Invalid callback body")
	}

	err := h.paymentService.HandleCallback(ctx, &callback)
	if err != nil {
		var captured *services.PaymentCapturedOrderUpdateFailedError
		switch {
		case errors.As(err, &captured):
			return c.JSON(http.StatusAccepted, map[string]string{
				"status":     "captured_pending_reconciliation",
				"order_id":   captured.OrderID,
				"payment_id": captured.PaymentID,
			})
		case errors.Is(err, services.ErrSignatureInvalid):
			return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("SIGNATURE_INVALID", "Payment signature verification failed", nil))
		default:
			return common.SendServerError(c, "Failed to process payment callback")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "reconciled"})
}

// Abandon handles POST /payments/:order_id/abandon
func (h *PaymentHandlers) Abandon(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orderID := c.Param("order_id")
	if orderID == "" {
		return common.SendValidationError(c, "order_id", "order id is required")
	}

	if err := h.paymentService.Abandon(ctx, userID, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Order")
		}
		return common.SendServerError(c, "Failed to abandon payment")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "abandoned"})
}
