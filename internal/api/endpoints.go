package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/shopspring/decimal"
)

func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, fmt.Errorf("create order: response has no order id")
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/my-history", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreatePaymentOrder opens a gateway payment session for an existing order.
func (c *Client) CreatePaymentOrder(ctx context.Context, orderID string) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	in := map[string]string{"orderId": orderID}
	if err := c.do(ctx, http.MethodPost, "/api/payments/create-order", in, &intent); err != nil {
		return nil, err
	}
	if intent.GatewayOrder.ID == "" {
		return nil, fmt.Errorf("create payment order: response has no gateway order id")
	}
	return &intent, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req domain.VerifyPaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/api/payments/verify", req, nil)
}

func (c *Client) GetWalletBalance(ctx context.Context) (*domain.WalletBalance, error) {
	var balance domain.WalletBalance
	if err := c.do(ctx, http.MethodGet, "/api/wallet", nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) ListWalletTransactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out domain.TransactionPage
	if err := c.do(ctx, http.MethodGet, "/api/wallet/transactions?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateWalletTopUp(ctx context.Context, amount decimal.Decimal) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/wallet/topup", domain.TopUpRequest{Amount: amount}, &intent); err != nil {
		return nil, err
	}
	if intent.GatewayOrder.ID == "" {
		return nil, fmt.Errorf("create top-up: response has no gateway order id")
	}
	return &intent, nil
}

func (c *Client) VerifyWalletTopUp(ctx context.Context, req domain.VerifyPaymentRequest) error {
	req.OrderID = ""
	return c.do(ctx, http.MethodPost, "/api/wallet/topup/verify", req, nil)
}

func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	var r domain.Restaurant
	if err := c.do(ctx, http.MethodGet, "/api/restaurants/"+url.PathEscape(restaurantID), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
