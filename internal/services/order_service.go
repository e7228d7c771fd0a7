package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"shopmart/internal/caching"
	"shopmart/internal/common"
	"shopmart/internal/models"
	"shopmart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// lineTotalTolerance absorbs float formatting noise when cross-checking
// client-supplied line totals against quantity * price.
const lineTotalTolerance = 0.01

// CreateOrderRequest is the client's checkout submission. DeliveryCharge,
// when nil, is filled from the shipping quoter.
type CreateOrderRequest struct {
	Items           []models.CartItem `json:"items"`
	AddressID       uuid.UUID         `json:"address_id"`
	DiscountAmount  float64           `json:"discount_amount"`
	DeliveryCharge  *float64          `json:"delivery_charge"`
	BusinessAccount bool              `json:"business_account"`
}

// ShippingQuoter supplies the delivery charge for an order. The quote is
// consumed as an opaque number.
type ShippingQuoter interface {
	Quote(ctx context.Context, address *models.Address, items []models.CartItem) (float64, error)
}

// FlatRateQuoter charges a fixed amount per order, free above a threshold.
type FlatRateQuoter struct {
	Rate          float64
	FreeThreshold float64
}

func (q FlatRateQuoter) Quote(_ context.Context, _ *models.Address, items []models.CartItem) (float64, error) {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal
	}
	if q.FreeThreshold > 0 && subtotal >= q.FreeThreshold {
		return 0, nil
	}
	return q.Rate, nil
}

// OrderDetail pairs an order header with its line items.
type OrderDetail struct {
	Order *models.Order       `json:"order"`
	Items []*models.OrderItem `json:"items"`
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, userID uuid.UUID, orderID string) (*OrderDetail, error)
	ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	addressRepo repositories.AddressRepository
	productRepo repositories.ProductRepository
	identifiers IdentifierService
	quoter      ShippingQuoter
	cache       caching.CacheService
	officeID    string
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	addressRepo repositories.AddressRepository,
	productRepo repositories.ProductRepository,
	identifiers IdentifierService,
	quoter ShippingQuoter,
	cache caching.CacheService,
	officeID string,
) OrderServiceInterface {
	return &orderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		identifiers: identifiers,
		quoter:      quoter,
		cache:       cache,
		officeID:    officeID,
	}
}

// CreateOrder validates the cart, computes totals, allocates an order id
// and a proforma invoice number, and persists header plus items in one
// transaction. Validation failures leave no rows behind; so do persistence
// failures, since nothing outside the final write mutates storage except
// the sequence counters, which are gap-tolerant.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	address, err := s.addressRepo.GetByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotOwned
		}
		return nil, common.SecureErrorMessage("load shipping address", err)
	}
	if address.UserID != userID {
		return nil, ErrAddressNotOwned
	}

	if err := common.ValidateNonNegativeFloat(req.DiscountAmount, "discount amount", 10000000.00); err != nil {
		return nil, err
	}

	var subtotal float64
	for i, item := range req.Items {
		if err := common.ValidateCartBusinessRules(item.Quantity, item.Price); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		// Client totals are used for the subtotal, but only after they
		// survive a recomputation check against quantity * price.
		expected := float64(item.Quantity) * item.Price
		if math.Abs(item.LineTotal-expected) > lineTotalTolerance {
			return nil, fmt.Errorf("item %d: %w", i, ErrPriceMismatch)
		}
		subtotal += item.LineTotal
	}

	delivery := req.DeliveryCharge
	if delivery == nil {
		quote, err := s.quoter.Quote(ctx, address, req.Items)
		if err != nil {
			return nil, common.SecureErrorMessage("quote shipping charge", err)
		}
		delivery = &quote
	}

	grandTotal := subtotal - req.DiscountAmount + common.SafeFloat64(delivery)
	roundedTotal := math.Round(grandTotal)
	roundingOff := roundedTotal - grandTotal

	now := time.Now()

	orderID, err := s.identifiers.GenerateOrderID(ctx)
	if err != nil {
		return nil, common.SecureErrorMessage("generate order id", err)
	}

	invoice, err := s.identifiers.GenerateInvoiceNumber(ctx, models.InvoiceTypePI, req.BusinessAccount, &s.officeID, now)
	if err != nil {
		return nil, common.SecureErrorMessage("generate invoice number", err)
	}

	order := &models.Order{
		ID:                    orderID,
		UserID:                userID,
		OrderDate:             now,
		Status:                models.OrderStatusPlaced,
		TotalAmount:           grandTotal,
		DiscountAmount:        req.DiscountAmount,
		DeliveryCharge:        delivery,
		RoundedOffAmount:      roundingOff,
		InvoiceAmount:         roundedTotal,
		InvoiceType:           models.InvoiceTypePI,
		InvoiceOfficeID:       s.officeID,
		InvoiceSequenceNumber: invoice.Sequence,
		InvoiceNumber:         invoice.Number,
		ShippingAddressID:     &address.ID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	items := make([]*models.OrderItem, 0, len(req.Items))
	for _, cartItem := range req.Items {
		items = append(items, &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
			Price:     cartItem.Price,
			Discount:  math.Max(0, cartItem.OriginalPrice-cartItem.Price) * float64(cartItem.Quantity),
			Tax:       s.taxFor(ctx, cartItem),
		})
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		return nil, common.SecureErrorMessage("persist order", err)
	}

	return order, nil
}

// taxFor resolves the product's tax rate, preferring the cache. A product
// that cannot be resolved contributes zero tax rather than blocking the
// order.
func (s *orderService) taxFor(ctx context.Context, item models.CartItem) float64 {
	product, err := s.cache.GetProduct(ctx, item.ProductID)
	if err != nil || product == nil {
		product, err = s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				log.Printf("tax lookup for product %s failed: %v", item.ProductID, err)
			}
			return 0
		}
		if cacheErr := s.cache.SetProduct(ctx, product, caching.ProductTTL); cacheErr != nil {
			log.Printf("failed to cache product %s: %v", product.ID, cacheErr)
		}
	}

	return item.LineTotal * product.TaxRate / 100
}

func (s *orderService) GetOrderByID(ctx context.Context, userID uuid.UUID, orderID string) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pgx.ErrNoRows
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, common.SecureErrorMessage("load order items", err)
	}

	return &OrderDetail{Order: order, Items: items}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit, offset)
}
