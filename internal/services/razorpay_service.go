package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RazorpayService handles the payment gateway round trip: opening a
// gateway order for an amount and verifying the signed callback Razorpay
// sends after the customer pays.
type RazorpayService interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error)
	VerifySignature(razorpayOrderID, razorpayPaymentID, signature string) error
}

// GatewayOrder is Razorpay's order entity, trimmed to the fields the
// reconciler needs.
type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayService struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

// NewRazorpayService creates a new Razorpay service instance
func NewRazorpayService(apiKey, apiSecret string) RazorpayService {
	return &razorpayService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://api.razorpay.com/v1",
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateOrder opens a gateway order for the given amount in paise. Errors
// surface as ErrGatewayUnavailable; the caller does not retry, the user
// restarts checkout instead.
func (s *razorpayService) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error) {
	if s.apiKey == "" || s.apiSecret == "" {
		return nil, fmt.Errorf("%w: missing API credentials", ErrGatewayUnavailable)
	}
	if amountPaise <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountPaise)
	}
	if currency == "" {
		currency = "INR"
	}

	body, err := s.makeRequest(ctx, http.MethodPost, "/orders", createOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	var order GatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: malformed gateway response: %v", ErrGatewayUnavailable, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: gateway response missing order id", ErrGatewayUnavailable)
	}

	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay attaches to a
// payment callback: hex(HMAC(order_id + "|" + payment_id, secret)).
// Comparison is constant time. A mismatch is ErrSignatureInvalid and is
// never retried.
func (s *razorpayService) VerifySignature(razorpayOrderID, razorpayPaymentID, signature string) error {
	if razorpayOrderID == "" || razorpayPaymentID == "" || signature == "" {
		return ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, []byte(s.apiSecret))
	mac.Write([]byte(razorpayOrderID + "|" + razorpayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureInvalid
	}
	return nil
}

func (s *razorpayService) makeRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}
