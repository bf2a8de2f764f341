package wallet

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/shopspring/decimal"
)

// MockFetcher returns Balance, optionally waiting on Gate first.
type MockFetcher struct {
	mu      sync.Mutex
	Balance decimal.Decimal
	Err     error
	Gate    chan struct{}
	Started chan struct{}
	calls   atomic.Int32
}

func (m *MockFetcher) GetWalletBalance(ctx context.Context) (*domain.WalletBalance, error) {
	m.calls.Add(1)
	if m.Started != nil {
		select {
		case m.Started <- struct{}{}:
		default:
		}
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return &domain.WalletBalance{ID: "w1", UserID: "u1", Balance: m.Balance}, nil
}

func (m *MockFetcher) SetBalance(b decimal.Decimal) {
	m.mu.Lock()
	m.Balance = b
	m.mu.Unlock()
}

func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// MockLister serves pages of a fixed transaction list.
type MockLister struct {
	All   []domain.WalletTransaction
	Pages []int
}

func (m *MockLister) ListWalletTransactions(_ context.Context, page, limit int) (*domain.TransactionPage, error) {
	m.Pages = append(m.Pages, page)
	total := len(m.All)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return &domain.TransactionPage{
		Data: m.All[start:end],
		Meta: domain.PageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	}, nil
}
