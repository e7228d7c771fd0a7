package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment attempt statuses. VERIFIED means the gateway callback signature
// checked out; RECONCILED means the order row durably reflects the payment.
// UPDATE_FAILED is terminal only for the automated flow: the money has
// moved and an operator must reconcile the row by hand, so such rows are
// never deleted or overwritten by the sweeper.
const (
	PaymentStatusPending      = "PENDING"
	PaymentStatusVerified     = "VERIFIED"
	PaymentStatusReconciled   = "RECONCILED"
	PaymentStatusUpdateFailed = "UPDATE_FAILED"
	PaymentStatusFailed       = "FAILED"
	PaymentStatusAbandoned    = "ABANDONED"
)

type PaymentAttempt struct {
	ID                uuid.UUID `json:"id" db:"id"`
	OrderID           string    `json:"order_id" db:"order_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID *string   `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	Status            string    `json:"status" db:"status"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
