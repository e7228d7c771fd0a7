package repositories

import (
	"context"
	"time"

	"shopmart/internal/models"

	"github.com/google/uuid"
)

type PaymentAttemptRepository interface {
	Create(ctx context.Context, attempt *models.PaymentAttempt) error
	GetByGatewayOrderID(ctx context.Context, razorpayOrderID string) (*models.PaymentAttempt, error)
	GetLatestByOrderID(ctx context.Context, orderID string) (*models.PaymentAttempt, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// RecordPayment stores the gateway payment id alongside the status in
	// one write. This row is the durable record of a captured payment and
	// must land before any attempt to update the order itself.
	RecordPayment(ctx context.Context, id uuid.UUID, razorpayPaymentID, status string) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.PaymentAttempt, error)
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type paymentAttemptRepo struct {
	db Database
}

func NewPaymentAttemptRepo(db Database) PaymentAttemptRepository {
	return &paymentAttemptRepo{db: db}
}

func (r *paymentAttemptRepo) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (id, order_id, razorpay_order_id, razorpay_payment_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, attempt.ID, attempt.OrderID, attempt.RazorpayOrderID, attempt.RazorpayPaymentID, attempt.Status)
	return err
}

func (r *paymentAttemptRepo) GetByGatewayOrderID(ctx context.Context, razorpayOrderID string) (*models.PaymentAttempt, error) {
	attempt := &models.PaymentAttempt{}
	query := `
		SELECT id, order_id, razorpay_order_id, razorpay_payment_id, status, created_at, updated_at
		FROM payment_attempts
		WHERE razorpay_order_id = $1
	`
	err := r.db.QueryRow(ctx, query, razorpayOrderID).Scan(&attempt.ID, &attempt.OrderID, &attempt.RazorpayOrderID, &attempt.RazorpayPaymentID, &attempt.Status, &attempt.CreatedAt, &attempt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *paymentAttemptRepo) GetLatestByOrderID(ctx context.Context, orderID string) (*models.PaymentAttempt, error) {
	attempt := &models.PaymentAttempt{}
	query := `
		SELECT id, order_id, razorpay_order_id, razorpay_payment_id, status, created_at, updated_at
		FROM payment_attempts
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, orderID).Scan(&attempt.ID, &attempt.OrderID, &attempt.RazorpayOrderID, &attempt.RazorpayPaymentID, &attempt.Status, &attempt.CreatedAt, &attempt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *paymentAttemptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE payment_attempts
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *paymentAttemptRepo) RecordPayment(ctx context.Context, id uuid.UUID, razorpayPaymentID, status string) error {
	query := `
		UPDATE payment_attempts
		SET razorpay_payment_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, razorpayPaymentID, status, id)
	return err
}

func (r *paymentAttemptRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.PaymentAttempt, error) {
	query := `
		SELECT id, order_id, razorpay_order_id, razorpay_payment_id, status, created_at, updated_at
		FROM payment_attempts
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.PaymentAttempt
	for rows.Next() {
		attempt := &models.PaymentAttempt{}
		if err := rows.Scan(&attempt.ID, &attempt.OrderID, &attempt.RazorpayOrderID, &attempt.RazorpayPaymentID, &attempt.Status, &attempt.CreatedAt, &attempt.UpdatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

// MarkAbandonedBefore closes out payment intents that never saw a verified
// callback. Only PENDING rows are touched; captured payments keep their
// status whatever their age.
func (r *paymentAttemptRepo) MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE payment_attempts
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND created_at < $3
	`
	tag, err := r.db.Exec(ctx, query, models.PaymentStatusAbandoned, models.PaymentStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
