package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"shopmart/internal/common"
	"shopmart/internal/models"
	"shopmart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentCallback is the signed proof of payment the gateway posts back
// after the customer completes checkout: the two gateway identifiers plus
// the signature over them, nothing more. The endpoint is unauthenticated,
// so no field of this payload may reach business columns on the order.
type PaymentCallback struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	Signature         string `json:"razorpay_signature"`
}

// PaymentServiceInterface reconciles gateway-side payment truth with the
// order ledger.
type PaymentServiceInterface interface {
	CreateIntent(ctx context.Context, userID uuid.UUID, orderID string) (*models.PaymentAttempt, error)
	HandleCallback(ctx context.Context, callback *PaymentCallback) error
	Abandon(ctx context.Context, userID uuid.UUID, orderID string) error
}

type paymentService struct {
	gateway     RazorpayService
	orderRepo   repositories.OrderRepository
	attemptRepo repositories.PaymentAttemptRepository
	archive     ReceiptArchive
	applyPolicy common.RetryPolicy
}

func NewPaymentService(
	gateway RazorpayService,
	orderRepo repositories.OrderRepository,
	attemptRepo repositories.PaymentAttemptRepository,
	archive ReceiptArchive,
) PaymentServiceInterface {
	return &paymentService{
		gateway:     gateway,
		orderRepo:   orderRepo,
		attemptRepo: attemptRepo,
		archive:     archive,
		applyPolicy: common.DefaultRetryPolicy(),
	}
}

// CreateIntent opens a gateway order for the order's rounded invoice
// amount in paise and records a PENDING payment attempt against it.
func (s *paymentService) CreateIntent(ctx context.Context, userID uuid.UUID, orderID string) (*models.PaymentAttempt, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pgx.ErrNoRows
	}

	amountPaise := int64(math.Round(order.InvoiceAmount * 100))
	gatewayOrder, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", order.ID)
	if err != nil {
		return nil, err
	}

	attempt := &models.PaymentAttempt{
		ID:              uuid.New(),
		OrderID:         order.ID,
		RazorpayOrderID: gatewayOrder.ID,
		Status:          models.PaymentStatusPending,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, common.SecureErrorMessage("record payment attempt", err)
	}

	return attempt, nil
}

// HandleCallback drives the verified callback through to the order row.
//
// The ordering here is the core contract: the signature is verified first;
// the gateway payment id is then durably recorded on the attempt row; only
// after that does the order update run, under bounded retry. If the update
// exhausts its retries the attempt is marked UPDATE_FAILED, with the
// payment id already on it, and the caller gets a
// PaymentCapturedOrderUpdateFailedError, never a plain failure, because at
// that point the money has moved.
func (s *paymentService) HandleCallback(ctx context.Context, callback *PaymentCallback) error {
	attempt, err := s.attemptRepo.GetByGatewayOrderID(ctx, callback.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("no payment attempt for gateway order %s", callback.RazorpayOrderID)
		}
		return common.SecureErrorMessage("load payment attempt", err)
	}

	switch attempt.Status {
	case models.PaymentStatusReconciled:
		// Gateway retried a callback we already processed.
		return nil
	case models.PaymentStatusAbandoned, models.PaymentStatusFailed:
		return fmt.Errorf("payment attempt for order %s is %s", attempt.OrderID, attempt.Status)
	}

	if err := s.gateway.VerifySignature(callback.RazorpayOrderID, callback.RazorpayPaymentID, callback.Signature); err != nil {
		log.Printf("SUSPICIOUS: signature verification failed for gateway order %s, order %s", callback.RazorpayOrderID, attempt.OrderID)
		return err
	}

	// The payment is captured from here on. Persist the payment id before
	// touching the order so it survives any ledger-side failure.
	if err := s.attemptRepo.RecordPayment(ctx, attempt.ID, callback.RazorpayPaymentID, models.PaymentStatusVerified); err != nil {
		return common.SecureErrorMessage("record verified payment", err)
	}

	update := &models.PaymentUpdate{
		RazorpayOrderID:   callback.RazorpayOrderID,
		RazorpayPaymentID: callback.RazorpayPaymentID,
	}

	applyErr := common.Retry(ctx, s.applyPolicy, func(ctx context.Context) error {
		return s.orderRepo.UpdatePayment(ctx, attempt.OrderID, update)
	})
	if applyErr != nil {
		if err := s.attemptRepo.UpdateStatus(ctx, attempt.ID, models.PaymentStatusUpdateFailed); err != nil {
			log.Printf("failed to mark attempt %s UPDATE_FAILED: %v", attempt.ID, err)
		}
		return &PaymentCapturedOrderUpdateFailedError{
			OrderID:   attempt.OrderID,
			PaymentID: callback.RazorpayPaymentID,
			Attempts:  s.applyPolicy.MaxAttempts,
			Err:       applyErr,
		}
	}

	if err := s.attemptRepo.UpdateStatus(ctx, attempt.ID, models.PaymentStatusReconciled); err != nil {
		log.Printf("order %s updated but attempt %s not marked RECONCILED: %v", attempt.OrderID, attempt.ID, err)
	}

	s.archiveReceipt(attempt.OrderID, callback.RazorpayPaymentID)

	return nil
}

// Abandon closes a payment attempt whose checkout modal was dismissed
// before verification. The order row is untouched; calling it twice, or
// for an order with no open attempt, is a no-op.
func (s *paymentService) Abandon(ctx context.Context, userID uuid.UUID, orderID string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return pgx.ErrNoRows
	}

	attempt, err := s.attemptRepo.GetLatestByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return common.SecureErrorMessage("load payment attempt", err)
	}

	if attempt.Status != models.PaymentStatusPending {
		return nil
	}

	return s.attemptRepo.UpdateStatus(ctx, attempt.ID, models.PaymentStatusAbandoned)
}

// archiveReceipt uploads a payment receipt snapshot in the background.
// Best effort: the reconciliation outcome does not depend on it.
func (s *paymentService) archiveReceipt(orderID, paymentID string) {
	if s.archive == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic archiving receipt for order %s: %v", orderID, r)
			}
		}()

		if err := s.archive.StoreReceipt(context.Background(), orderID, paymentID); err != nil {
			log.Printf("Failed to archive receipt for order %s: %v", orderID, err)
		}
	}()
}
