package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice types issued against an order. A proforma invoice (PI) is
// allocated at order placement; the final tax invoice is allocated at a
// later lifecycle stage.
const (
	InvoiceTypePI  = "PI"
	InvoiceTypeTax = "TAX_INVOICE"
)

// Order statuses
const (
	OrderStatusPlaced    = "placed"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID                    string     `json:"id" db:"id"`
	UserID                uuid.UUID  `json:"user_id" db:"user_id"`
	OrderDate             time.Time  `json:"order_date" db:"order_date"`
	Status                string     `json:"status" db:"status"`
	TotalAmount           float64    `json:"total_amount" db:"total_amount"`
	DiscountAmount        float64    `json:"discount_amount" db:"discount_amount"`
	DeliveryCharge        *float64   `json:"delivery_charge" db:"delivery_charge"`
	RoundedOffAmount      float64    `json:"rounded_off_amount" db:"rounded_off_amount"`
	InvoiceAmount         float64    `json:"invoice_amount" db:"invoice_amount"`
	InvoiceType           string     `json:"invoice_type" db:"invoice_type"`
	InvoiceOfficeID       string     `json:"invoice_office_id" db:"invoice_office_id"`
	InvoiceSequenceNumber int        `json:"invoice_sequence_number" db:"invoice_sequence_number"`
	InvoiceNumber         string     `json:"invoice_number" db:"invoice_number"`
	ShippingAddressID     *uuid.UUID `json:"shipping_address_id" db:"shipping_address_id"`
	RazorpayOrderID       *string    `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID     *string    `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// CartItem is the client-supplied line item used to place an order.
// LineTotal is what the client's cart computed for the line; the order
// service cross-checks it against Quantity*Price before trusting it.
type CartItem struct {
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int       `json:"quantity"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price"`
	LineTotal     float64   `json:"line_total"`
}

// PaymentUpdate carries the gateway identifiers written onto an order row
// once a payment has been verified. Nothing else: the totals, discount,
// delivery charge, and address binding persisted at order creation are
// settled and a payment callback has no authority to revise them.
type PaymentUpdate struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
}
