package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopmart/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OrderRepository
	userID  uuid.UUID
	orderID string
	context context.Context
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepo(mock)
	suite.userID = uuid.New()
	suite.orderID = "ODR-25082025-143005-0001"
	suite.context = context.Background()
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) sampleOrder() *models.Order {
	addressID := uuid.New()
	return &models.Order{
		ID:                    suite.orderID,
		UserID:                suite.userID,
		OrderDate:             time.Now(),
		Status:                models.OrderStatusPlaced,
		TotalAmount:           100.40,
		RoundedOffAmount:      -0.40,
		InvoiceAmount:         100,
		InvoiceType:           models.InvoiceTypePI,
		InvoiceOfficeID:       "09",
		InvoiceSequenceNumber: 1,
		InvoiceNumber:         "P092025261",
		ShippingAddressID:     &addressID,
	}
}

func (suite *OrderRepoTestSuite) sampleItems(n int) []*models.OrderItem {
	items := make([]*models.OrderItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   suite.orderID,
			ProductID: uuid.New(),
			Quantity:  1,
			Price:     50.20,
		})
	}
	return items
}

func (suite *OrderRepoTestSuite) TestCreate_HeaderAndItemsInOneTransaction() {
	order := suite.sampleOrder()
	items := suite.sampleItems(2)

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, item := range items {
		suite.mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Discount, item.Tax).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	suite.mock.ExpectCommit()

	err := suite.repo.Create(suite.context, order, items)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreate_ItemFailureRollsBackHeader() {
	order := suite.sampleOrder()
	items := suite.sampleItems(2)

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnError(errors.New("foreign key violation"))
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, order, items)
	assert.Error(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreate_HeaderFailureRollsBack() {
	order := suite.sampleOrder()
	items := suite.sampleItems(1)

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WillReturnError(errors.New("duplicate key value"))
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, order, items)
	assert.Error(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestGetByID_Success() {
	now := time.Now()
	addressID := uuid.New()

	suite.mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "order_date", "status", "total_amount", "discount_amount",
			"delivery_charge", "rounded_off_amount", "invoice_amount", "invoice_type",
			"invoice_office_id", "invoice_sequence_number", "invoice_number",
			"shipping_address_id", "razorpay_order_id", "razorpay_payment_id",
			"created_at", "updated_at",
		}).AddRow(
			suite.orderID, suite.userID, now, models.OrderStatusPlaced, 100.40, 0.0,
			nil, -0.40, 100.0, models.InvoiceTypePI,
			"09", 1, "P092025261",
			&addressID, nil, nil,
			now, now,
		))

	order, err := suite.repo.GetByID(suite.context, suite.orderID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.orderID, order.ID)
	assert.Equal(suite.T(), "P092025261", order.InvoiceNumber)
	assert.Equal(suite.T(), 100.0, order.InvoiceAmount)
	assert.Nil(suite.T(), order.RazorpayPaymentID)
}

func (suite *OrderRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1`).
		WithArgs(suite.orderID).
		WillReturnError(pgx.ErrNoRows)

	order, err := suite.repo.GetByID(suite.context, suite.orderID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), order)
}

func (suite *OrderRepoTestSuite) TestUpdatePayment_Success() {
	update := &models.PaymentUpdate{
		RazorpayOrderID:   "order_Nx123",
		RazorpayPaymentID: "pay_Nx456",
	}

	suite.mock.ExpectExec(`UPDATE orders SET razorpay_order_id = \$1, razorpay_payment_id = \$2, status = \$3, updated_at = NOW\(\) WHERE id = \$4`).
		WithArgs(update.RazorpayOrderID, update.RazorpayPaymentID, models.OrderStatusPaid, suite.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdatePayment(suite.context, suite.orderID, update)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestUpdatePayment_MissingOrder() {
	update := &models.PaymentUpdate{
		RazorpayOrderID:   "order_Nx123",
		RazorpayPaymentID: "pay_Nx456",
	}

	suite.mock.ExpectExec(`UPDATE orders SET razorpay_order_id = \$1, razorpay_payment_id = \$2, status = \$3`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdatePayment(suite.context, suite.orderID, update)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "not found")
}

func (suite *OrderRepoTestSuite) TestListByUser_Empty() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM orders WHERE user_id = \$1`).
		WithArgs(suite.userID, 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "order_date", "status", "total_amount", "discount_amount",
			"delivery_charge", "rounded_off_amount", "invoice_amount", "invoice_type",
			"invoice_office_id", "invoice_sequence_number", "invoice_number",
			"shipping_address_id", "razorpay_order_id", "razorpay_payment_id",
			"created_at", "updated_at",
		}))

	orders, err := suite.repo.ListByUser(suite.context, suite.userID, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), orders)
}
