package repositories

import (
	"context"
	"fmt"

	"shopmart/internal/models"

	"github.com/google/uuid"
)

type OrderRepository interface {
	// Create persists the order header and all line items in one
	// transaction: either every row exists afterwards or none do.
	Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	GetItems(ctx context.Context, orderID string) ([]*models.OrderItem, error)
	UpdatePayment(ctx context.Context, orderID string, update *models.PaymentUpdate) error
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, order_date, status, total_amount, discount_amount, delivery_charge, rounded_off_amount, invoice_amount, invoice_type, invoice_office_id, invoice_sequence_number, invoice_number, shipping_address_id, razorpay_order_id, razorpay_payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, orderQuery, order.ID, order.UserID, order.OrderDate, order.Status, order.TotalAmount, order.DiscountAmount, order.DeliveryCharge, order.RoundedOffAmount, order.InvoiceAmount, order.InvoiceType, order.InvoiceOfficeID, order.InvoiceSequenceNumber, order.InvoiceNumber, order.ShippingAddressID, order.RazorpayOrderID, order.RazorpayPaymentID)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, discount, tax, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	for _, item := range items {
		_, err = tx.Exec(ctx, itemQuery, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Discount, item.Tax)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, user_id, order_date, status, total_amount, discount_amount, delivery_charge, rounded_off_amount, invoice_amount, invoice_type, invoice_office_id, invoice_sequence_number, invoice_number, shipping_address_id, razorpay_order_id, razorpay_payment_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.UserID, &order.OrderDate, &order.Status, &order.TotalAmount, &order.DiscountAmount, &order.DeliveryCharge, &order.RoundedOffAmount, &order.InvoiceAmount, &order.InvoiceType, &order.InvoiceOfficeID, &order.InvoiceSequenceNumber, &order.InvoiceNumber, &order.ShippingAddressID, &order.RazorpayOrderID, &order.RazorpayPaymentID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, order_date, status, total_amount, discount_amount, delivery_charge, rounded_off_amount, invoice_amount, invoice_type, invoice_office_id, invoice_sequence_number, invoice_number, shipping_address_id, razorpay_order_id, razorpay_payment_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.OrderDate, &order.Status, &order.TotalAmount, &order.DiscountAmount, &order.DeliveryCharge, &order.RoundedOffAmount, &order.InvoiceAmount, &order.InvoiceType, &order.InvoiceOfficeID, &order.InvoiceSequenceNumber, &order.InvoiceNumber, &order.ShippingAddressID, &order.RazorpayOrderID, &order.RazorpayPaymentID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *orderRepo) GetItems(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price, discount, tax, created_at, updated_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Discount, &item.Tax, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdatePayment binds a verified gateway payment to the order row. Only
// the gateway identifiers and the status change; the financial columns
// written at creation stay as they are.
func (r *orderRepo) UpdatePayment(ctx context.Context, orderID string, update *models.PaymentUpdate) error {
	query := `
		UPDATE orders
		SET razorpay_order_id = $1, razorpay_payment_id = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, update.RazorpayOrderID, update.RazorpayPaymentID, models.OrderStatusPaid, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}
