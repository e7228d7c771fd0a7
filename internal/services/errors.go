package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when an order is placed with no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrAddressNotOwned is returned when the shipping address does not
	// belong to the ordering user.
	ErrAddressNotOwned = errors.New("address does not belong to user")

	// ErrPriceMismatch is returned when a client-supplied line total does
	// not match quantity * price.
	ErrPriceMismatch = errors.New("line total does not match quantity and price")

	// ErrInvalidOfficeConfig is returned when no usable office state code
	// can be resolved for invoice numbering.
	ErrInvalidOfficeConfig = errors.New("invoice office has no usable state code")

	// ErrGatewayUnavailable is returned when the payment gateway is
	// misconfigured or the remote call fails. Not retried here; the user
	// restarts checkout.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrSignatureInvalid is returned when a gateway callback signature
	// does not verify. Security-relevant: never retried, never treated as
	// success.
	ErrSignatureInvalid = errors.New("payment signature verification failed")
)

// PaymentCapturedOrderUpdateFailedError reports the split-brain outcome:
// the gateway captured the payment, the signature verified, but the order
// row could not be updated within the retry budget. The payment id has
// already been durably recorded on the payment attempt row; an operator
// must reconcile the order by hand. This must never be collapsed into a
// plain payment failure.
type PaymentCapturedOrderUpdateFailedError struct {
	OrderID   string
	PaymentID string
	Attempts  int
	Err       error
}

func (e *PaymentCapturedOrderUpdateFailedError) Error() string {
	return fmt.Sprintf("payment %s captured for order %s but order update failed after %d attempts; manual reconciliation required", e.PaymentID, e.OrderID, e.Attempts)
}

func (e *PaymentCapturedOrderUpdateFailedError) Unwrap() error {
	return e.Err
}
