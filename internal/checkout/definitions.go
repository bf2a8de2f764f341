package checkout

import (
	"context"
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/outbox"
	"github.com/shopspring/decimal"
)

// OrderAPI is the slice of the backend used by checkout.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	CreatePaymentOrder(ctx context.Context, orderID string) (*domain.PaymentIntent, error)
	VerifyPayment(ctx context.Context, req domain.VerifyPaymentRequest) error
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

// WalletAPI is the slice of the backend used by top-ups.
type WalletAPI interface {
	CreateWalletTopUp(ctx context.Context, amount decimal.Decimal) (*domain.PaymentIntent, error)
	VerifyWalletTopUp(ctx context.Context, req domain.VerifyPaymentRequest) error
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

type Balance interface {
	Get(ctx context.Context) (domain.WalletBalance, error)
	Invalidate(ctx context.Context)
}

// TransactionHistory is reset after a top-up so the next read refetches.
type TransactionHistory interface {
	Reset()
}

// Recorder receives best-effort reports about finished attempts.
type Recorder interface {
	RecordOrphan(ctx context.Context, o outbox.OrphanedOrder) error
	RecordCompleted(ctx context.Context, c outbox.CompletedCheckout) error
}

type GatewayConfig struct {
	KeyID      string
	Name       string
	Image      string
	ThemeColor string
}

type Config struct {
	// Timeout bounds every backend call. The external payment UI is not bounded.
	Timeout time.Duration
	Gateway GatewayConfig
}

const (
	DefaultTimeout     = 10 * time.Second
	DefaultGatewayName = "Yo Foo"

	checkoutDescription = "Food Delivery Payment"
	topUpDescription    = "Yo Foo Wallet Top-up"
)

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Gateway.Name == "" {
		c.Gateway.Name = DefaultGatewayName
	}
	return c
}
