package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/gateway"
	"github.com/fjod/yofoo_cart/internal/outbox"
	"github.com/shopspring/decimal"
)

var errNoUser = errors.New("unauthorized")

// MockAPI implements OrderAPI and WalletAPI.
type MockAPI struct {
	mu sync.Mutex

	Order          *domain.Order
	CreateOrderErr error
	Intent         *domain.PaymentIntent
	IntentErr      error
	VerifyErr      error
	TopUpIntent    *domain.PaymentIntent
	TopUpErr       error
	VerifyTopUpErr error
	User           *domain.User
	// BlockUntilDone makes CreateOrder wait for the context.
	BlockUntilDone bool

	CreateOrderCalls []domain.CreateOrderRequest
	IntentCalls      []string
	VerifyCalls      []domain.VerifyPaymentRequest
	TopUpCalls       []decimal.Decimal
	VerifyTopUpCalls []domain.VerifyPaymentRequest
}

func (m *MockAPI) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	m.mu.Lock()
	m.CreateOrderCalls = append(m.CreateOrderCalls, req)
	block := m.BlockUntilDone
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.CreateOrderErr != nil {
		return nil, m.CreateOrderErr
	}
	return m.Order, nil
}

func (m *MockAPI) CreatePaymentOrder(_ context.Context, orderID string) (*domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IntentCalls = append(m.IntentCalls, orderID)
	if m.IntentErr != nil {
		return nil, m.IntentErr
	}
	return m.Intent, nil
}

func (m *MockAPI) VerifyPayment(_ context.Context, req domain.VerifyPaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyCalls = append(m.VerifyCalls, req)
	return m.VerifyErr
}

func (m *MockAPI) CreateWalletTopUp(_ context.Context, amount decimal.Decimal) (*domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopUpCalls = append(m.TopUpCalls, amount)
	if m.TopUpErr != nil {
		return nil, m.TopUpErr
	}
	return m.TopUpIntent, nil
}

func (m *MockAPI) VerifyWalletTopUp(_ context.Context, req domain.VerifyPaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyTopUpCalls = append(m.VerifyTopUpCalls, req)
	return m.VerifyTopUpErr
}

func (m *MockAPI) GetCurrentUser(context.Context) (*domain.User, error) {
	if m.User == nil {
		return nil, errNoUser
	}
	return m.User, nil
}

func (m *MockAPI) RemoteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateOrderCalls) + len(m.IntentCalls) + len(m.VerifyCalls) +
		len(m.TopUpCalls) + len(m.VerifyTopUpCalls)
}

func (m *MockAPI) CreateOrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateOrderCalls)
}

type MockBalance struct {
	mu          sync.Mutex
	Balance     decimal.Decimal
	Err         error
	GetCalls    int
	Invalidated int
}

func (m *MockBalance) Get(context.Context) (domain.WalletBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.Err != nil {
		return domain.WalletBalance{}, m.Err
	}
	return domain.WalletBalance{ID: "w1", Balance: m.Balance}, nil
}

func (m *MockBalance) Invalidate(context.Context) {
	m.mu.Lock()
	m.Invalidated++
	m.mu.Unlock()
}

type MockHistory struct{ Resets int }

func (m *MockHistory) Reset() { m.Resets++ }

// MockGateway answers Open with Result or Err. With Hold set it waits for
// a value on Hold first.
type MockGateway struct {
	mu     sync.Mutex
	Result *gateway.Result
	Err    error
	Hold   chan struct{}
	Opened []gateway.Options
}

func (m *MockGateway) Open(ctx context.Context, opts gateway.Options) (*gateway.Result, error) {
	m.mu.Lock()
	m.Opened = append(m.Opened, opts)
	m.mu.Unlock()
	if m.Hold != nil {
		select {
		case <-m.Hold:
		case <-ctx.Done():
			return nil, &gateway.Error{Code: gateway.CodeCancelled, Description: gateway.CancelledDescription}
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

type MockRecorder struct {
	mu        sync.Mutex
	Orphans   []outbox.OrphanedOrder
	Completed []outbox.CompletedCheckout
	Err       error
}

func (m *MockRecorder) RecordOrphan(_ context.Context, o outbox.OrphanedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orphans = append(m.Orphans, o)
	return m.Err
}

func (m *MockRecorder) RecordCompleted(_ context.Context, c outbox.CompletedCheckout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed = append(m.Completed, c)
	return m.Err
}
