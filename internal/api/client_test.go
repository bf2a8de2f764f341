package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/fjod/yofoo_cart/pkg/circuitbreaker"
	"github.com/fjod/yofoo_cart/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return NewClient(srv.URL, opts...)
}

func TestCreateOrder_SendsPayloadAndCookie(t *testing.T) {
	sessions := storage.NewMemory()
	blob := `{
		"better-auth.session_token": {"value": "abc123", "expires": "2999-01-01T00:00:00Z"},
		"old": {"value": "stale", "expires": "2000-01-01T00:00:00Z"},
		"plain": {"value": "v", "expires": null}
	}`
	require.NoError(t, sessions.Set(context.Background(), storage.SessionKey, []byte(blob)))

	var gotCookie string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		gotCookie = r.Header.Get("Cookie")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"ord_1","restaurantId":"r1","status":"PLACED","totalAmount":497,"paymentMode":"COD"}`)
	}, WithSessionStore(sessions))

	order, err := c.CreateOrder(context.Background(), domain.CreateOrderRequest{
		RestaurantID: "r1",
		Items:        []domain.OrderItemRequest{{MenuItemID: "m1", Quantity: 2}},
		PaymentMode:  domain.PaymentModeCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, "ord_1", order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(497)))
	assert.Equal(t, "better-auth.session_token=abc123; plain=v", gotCookie)
	assert.Equal(t, "r1", gotBody["restaurantId"])
	assert.Equal(t, "COD", gotBody["paymentMode"])
}

func TestCreatePaymentOrder_DecodesIntent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ord_1", in["orderId"])
		_, _ = io.WriteString(w, `{"razorpayOrder":{"id":"pay_1","amount":49700,"currency":"INR","receipt":"rcpt","status":"created"},"paymentId":"p_int","orderId":"ord_1","amount":497}`)
	})

	intent, err := c.CreatePaymentOrder(context.Background(), "ord_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", intent.GatewayOrder.ID)
	assert.Equal(t, int64(49700), intent.GatewayOrder.AmountMinor)
	assert.Equal(t, "INR", intent.GatewayOrder.Currency)
	assert.Equal(t, "ord_1", intent.OrderID)
}

func TestCreatePaymentOrder_MissingGatewayOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"orderId":"ord_1"}`)
	})
	_, err := c.CreatePaymentOrder(context.Background(), "ord_1")
	assert.Error(t, err)
}

func TestVerifyWalletTopUp_OmitsOrderID(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/wallet/topup/verify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	})

	err := c.VerifyWalletTopUp(context.Background(), domain.VerifyPaymentRequest{
		GatewayPaymentID: "p1", GatewayOrderID: "pay_1", Signature: "sig", OrderID: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"razorpayPaymentId": "p1", "razorpayOrderId": "pay_1", "razorpaySignature": "sig"}, raw)
}

func TestListWalletTransactions_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"data":[{"id":"t1","walletId":"w1","type":"TOPUP","amount":500,"createdAt":"2026-01-02T10:00:00Z"}],"meta":{"total":11,"page":2,"limit":10,"totalPages":2}}`)
	})

	page, err := c.ListWalletTransactions(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].IsCredit())
	assert.False(t, page.HasNextPage())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string message", `{"message":"Restaurant is closed"}`, "Restaurant is closed"},
		{"list message", `{"message":["quantity must be positive","items should not be empty"]}`, "quantity must be positive, items should not be empty"},
		{"error field", `{"error":"Bad Request"}`, "Bad Request"},
		{"not json", `<html>oops</html>`, DefaultErrorMessage},
		{"empty", ``, DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetWalletBalance(context.Background())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestTimeout_IsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.GetCurrentUser(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "Request timed out. Please try again.", Message(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithLogger(logger.Discard()))
	_, err := c.ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, "Network Error", Message(err))
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	var calls atomic.Int32
	cfg := circuitbreaker.DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}, WithBreaker(cfg))

	for i := 0; i < 5; i++ {
		_, err := c.GetWalletBalance(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestBreaker_ServerErrorsTrip(t *testing.T) {
	var calls atomic.Int32
	cfg := circuitbreaker.DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithBreaker(cfg))

	for i := 0; i < 2; i++ {
		_, err := c.GetWalletBalance(context.Background())
		require.Error(t, err)
	}
	_, err := c.GetWalletBalance(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUnauthorized_ReturnsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthorized"}`)
	})
	_, err := c.GetCurrentUser(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCookieHeader(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "", cookieHeader(nil, now))
	assert.Equal(t, "", cookieHeader([]byte("garbage"), now))
	assert.Equal(t, "a=1", cookieHeader([]byte(`{"a":{"value":"1","expires":"not-a-date"}}`), now))
	assert.Equal(t, "", cookieHeader([]byte(`{"a":{"value":"1","expires":"2025-12-31T23:59:59Z"}}`), now))
}
