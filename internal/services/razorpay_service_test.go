package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestRazorpayService(baseURL string) *razorpayService {
	return &razorpayService{
		apiKey:    "rzp_test_key",
		apiSecret: "rzp_test_secret",
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestVerifySignature_ValidSignature(t *testing.T) {
	svc := newTestRazorpayService("")
	sig := signPayment("rzp_test_secret", "order_Nx123", "pay_Nx456")
	assert.NoError(t, svc.VerifySignature("order_Nx123", "pay_Nx456", sig))
}

func TestVerifySignature_TamperedPaymentID(t *testing.T) {
	svc := newTestRazorpayService("")
	sig := signPayment("rzp_test_secret", "order_Nx123", "pay_Nx456")
	assert.ErrorIs(t, svc.VerifySignature("order_Nx123", "pay_other", sig), ErrSignatureInvalid)
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	svc := newTestRazorpayService("")
	sig := signPayment("some_other_secret", "order_Nx123", "pay_Nx456")
	assert.ErrorIs(t, svc.VerifySignature("order_Nx123", "pay_Nx456", sig), ErrSignatureInvalid)
}

func TestVerifySignature_EmptyFields(t *testing.T) {
	svc := newTestRazorpayService("")
	assert.ErrorIs(t, svc.VerifySignature("", "pay_Nx456", "sig"), ErrSignatureInvalid)
	assert.ErrorIs(t, svc.VerifySignature("order_Nx123", "", "sig"), ErrSignatureInvalid)
	assert.ErrorIs(t, svc.VerifySignature("order_Nx123", "pay_Nx456", ""), ErrSignatureInvalid)
}

func TestCreateOrder_MissingCredentials(t *testing.T) {
	svc := &razorpayService{http: &http.Client{}}
	_, err := svc.CreateOrder(context.Background(), 10000, "INR", "ODR-25082025-143005-0001")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrder_RejectsNonPositiveAmount(t *testing.T) {
	svc := newTestRazorpayService("")
	_, err := svc.CreateOrder(context.Background(), 0, "INR", "ODR-25082025-143005-0001")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrder_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_Nx123","entity":"order","amount":10000,"currency":"INR","receipt":"ODR-25082025-143005-0001","status":"created"}`))
	}))
	defer server.Close()

	svc := newTestRazorpayService(server.URL)
	order, err := svc.CreateOrder(context.Background(), 10000, "INR", "ODR-25082025-143005-0001")
	require.NoError(t, err)
	assert.Equal(t, "order_Nx123", order.ID)
	assert.Equal(t, int64(10000), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrder_GatewayErrorSurfacesAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newTestRazorpayService(server.URL)
	_, err := svc.CreateOrder(context.Background(), 10000, "INR", "ODR-25082025-143005-0001")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrder_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity":"order"}`))
	}))
	defer server.Close()

	svc := newTestRazorpayService(server.URL)
	_, err := svc.CreateOrder(context.Background(), 10000, "INR", "ODR-25082025-143005-0001")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
