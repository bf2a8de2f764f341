package wallet

import (
	"context"
	"sync"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultPageSize = 10

type TransactionLister interface {
	ListWalletTransactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error)
}

// TransactionFeed pages through wallet history and keeps what it has loaded.
type TransactionFeed struct {
	lister TransactionLister
	limit  int

	mu       sync.Mutex
	items    []domain.WalletTransaction
	loaded   int
	lastMeta *domain.PageMeta
}

func NewTransactionFeed(lister TransactionLister, limit int) *TransactionFeed {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &TransactionFeed{lister: lister, limit: limit}
}

// Next loads the following page. It returns no items once the last page is in.
func (f *TransactionFeed) Next(ctx context.Context) ([]domain.WalletTransaction, error) {
	f.mu.Lock()
	if f.lastMeta != nil && f.loaded >= f.lastMeta.TotalPages {
		f.mu.Unlock()
		return nil, nil
	}
	page := f.loaded + 1
	f.mu.Unlock()

	res, err := f.lister.ListWalletTransactions(ctx, page, f.limit)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded+1 != page {
		// reset or another Next won the race
		return nil, nil
	}
	f.loaded = page
	meta := res.Meta
	f.lastMeta = &meta
	f.items = append(f.items, res.Data...)
	return res.Data, nil
}

func (f *TransactionFeed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMeta == nil || f.loaded < f.lastMeta.TotalPages
}

// Loaded is the number of pages fetched since the last reset.
func (f *TransactionFeed) Loaded() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *TransactionFeed) Items() []domain.WalletTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.WalletTransaction, len(f.items))
	copy(out, f.items)
	return out
}

// Reset drops everything loaded so the next call starts at page 1.
func (f *TransactionFeed) Reset() {
	f.mu.Lock()
	f.items = nil
	f.loaded = 0
	f.lastMeta = nil
	f.mu.Unlock()
}

type Summary struct {
	TotalAdded decimal.Decimal `json:"totalAdded"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

func Summarize(txs []domain.WalletTransaction) Summary {
	s := Summary{TotalAdded: decimal.Zero, TotalSpent: decimal.Zero}
	for _, tx := range txs {
		if tx.IsCredit() {
			s.TotalAdded = s.TotalAdded.Add(tx.Amount.Abs())
		} else {
			s.TotalSpent = s.TotalSpent.Add(tx.Amount.Abs())
		}
	}
	return s
}
