package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopmart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAttemptRepo struct {
	mock.Mock
}

func (m *mockAttemptRepo) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *mockAttemptRepo) GetByGatewayOrderID(ctx context.Context, razorpayOrderID string) (*models.PaymentAttempt, error) {
	args := m.Called(ctx, razorpayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentAttempt), args.Error(1)
}

func (m *mockAttemptRepo) GetLatestByOrderID(ctx context.Context, orderID string) (*models.PaymentAttempt, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentAttempt), args.Error(1)
}

func (m *mockAttemptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockAttemptRepo) RecordPayment(ctx context.Context, id uuid.UUID, razorpayPaymentID, status string) error {
	args := m.Called(ctx, id, razorpayPaymentID, status)
	return args.Error(0)
}

func (m *mockAttemptRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.PaymentAttempt, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.PaymentAttempt), args.Error(1)
}

func (m *mockAttemptRepo) MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestSweep_AbandonsStaleAndReportsStuckAttempts(t *testing.T) {
	repo := new(mockAttemptRepo)
	sweeper, err := NewReconciliationSweeper(repo)
	require.NoError(t, err)

	start := time.Now()
	repo.On("MarkAbandonedBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		age := start.Sub(cutoff)
		return age >= abandonAfter && age < abandonAfter+time.Minute
	})).Return(int64(2), nil)

	paymentID := "pay_Nx456"
	stuck := []*models.PaymentAttempt{
		{ID: uuid.New(), OrderID: "ODR-25082025-143005-0001", RazorpayPaymentID: &paymentID, Status: models.PaymentStatusUpdateFailed},
		{ID: uuid.New(), OrderID: "ODR-25082025-143005-0002", RazorpayPaymentID: nil, Status: models.PaymentStatusUpdateFailed},
	}
	repo.On("ListByStatus", mock.Anything, models.PaymentStatusUpdateFailed, 100, 0).Return(stuck, nil)

	sweeper.sweep(context.Background())
	repo.AssertExpectations(t)
}

func TestSweep_AbandonFailureStillReportsStuckAttempts(t *testing.T) {
	repo := new(mockAttemptRepo)
	sweeper, err := NewReconciliationSweeper(repo)
	require.NoError(t, err)

	repo.On("MarkAbandonedBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))
	repo.On("ListByStatus", mock.Anything, models.PaymentStatusUpdateFailed, 100, 0).Return([]*models.PaymentAttempt{}, nil)

	sweeper.sweep(context.Background())
	repo.AssertExpectations(t)
	assert.True(t, repo.AssertCalled(t, "ListByStatus", mock.Anything, models.PaymentStatusUpdateFailed, 100, 0))
}
