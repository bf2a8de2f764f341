package wallet

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrBalanceLoading = errors.New("wallet balance is still loading, please wait")

type BalanceFetcher interface {
	GetWalletBalance(ctx context.Context) (*domain.WalletBalance, error)
}

// BalanceCache holds the last fetched wallet balance. Reads while a fetch is
// in flight are refused rather than served a value that may be outdated.
type BalanceCache struct {
	fetcher BalanceFetcher
	maxAge  time.Duration
	sfg     singleflight.Group // one fetch at a time
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	balance   *domain.WalletBalance
	fetchedAt time.Time
	stale     bool
	loading   bool
	lastErr   error
}

func NewBalanceCache(fetcher BalanceFetcher, maxAge time.Duration, log *slog.Logger) *BalanceCache {
	return &BalanceCache{
		fetcher: fetcher,
		maxAge:  maxAge,
		log:     log,
		now:     time.Now,
	}
}

// Get returns a fresh balance, fetching it if needed. It fails with
// ErrBalanceLoading while a background fetch is outstanding.
func (c *BalanceCache) Get(ctx context.Context) (domain.WalletBalance, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return domain.WalletBalance{}, ErrBalanceLoading
	}
	if c.balance != nil && !c.stale && c.now().Sub(c.fetchedAt) < c.maxAge {
		b := *c.balance
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Refresh fetches the balance now. Concurrent callers share one request.
func (c *BalanceCache) Refresh(ctx context.Context) (domain.WalletBalance, error) {
	v, err, _ := c.sfg.Do("balance", func() (interface{}, error) {
		c.mu.Lock()
		c.loading = true
		c.mu.Unlock()

		b, err := c.fetcher.GetWalletBalance(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading = false
		c.lastErr = err
		if err != nil {
			return nil, err
		}
		c.balance = b
		c.fetchedAt = c.now()
		c.stale = false
		return *b, nil
	})
	if err != nil {
		return domain.WalletBalance{}, err
	}
	return v.(domain.WalletBalance), nil
}

// Prefetch starts a background fetch, as a screen does when it mounts.
func (c *BalanceCache) Prefetch(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	go func() {
		if _, err := c.Refresh(context.WithoutCancel(ctx)); err != nil {
			c.log.WarnContext(ctx, "wallet balance fetch failed", "error", err)
		}
	}()
}

// Invalidate marks the balance stale and refetches it in the background.
func (c *BalanceCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
	c.Prefetch(ctx)
}

type BalanceState struct {
	Balance   *domain.WalletBalance `json:"balance,omitempty"`
	Loading   bool                  `json:"loading"`
	FetchedAt time.Time             `json:"fetchedAt,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Snapshot reports the cached balance without fetching.
func (c *BalanceCache) Snapshot() BalanceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := BalanceState{Loading: c.loading, FetchedAt: c.fetchedAt}
	if c.balance != nil {
		b := *c.balance
		st.Balance = &b
	}
	if c.lastErr != nil {
		st.Error = c.lastErr.Error()
	}
	return st
}
