package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/storage"
)

type CartStore struct {
	mu        sync.Mutex
	cart      domain.Cart
	version   uint64
	closed    bool
	persister *persister

	// held while listeners run; never acquired with mu held
	notifyMu  sync.Mutex
	notified  uint64
	listeners map[int]func(domain.Cart)
	nextSubID int

	log *slog.Logger
}

// NewCartStore returns an empty store. A nil backend keeps the cart in memory only.
func NewCartStore(backend storage.Storage, log *slog.Logger) *CartStore {
	s := &CartStore{
		listeners: make(map[int]func(domain.Cart)),
		log:       log,
	}
	if backend != nil {
		s.persister = newPersister(backend, log)
	}
	return s
}

func (s *CartStore) AddItem(item domain.MenuItem, restaurantID string) {
	s.mutate(func(c *domain.Cart) bool {
		if c.RestaurantID != "" && c.RestaurantID != restaurantID && len(c.Lines) > 0 {
			s.log.Info("cart switched restaurant", "from", c.RestaurantID, "to", restaurantID)
			c.Lines = nil
		}
		c.RestaurantID = restaurantID

		if _, idx := c.Line(item.ID); idx >= 0 {
			c.Lines[idx].Quantity++
			return true
		}
		c.Lines = append(c.Lines, domain.CartLine{MenuItem: item, Quantity: 1})
		return true
	})
}

func (s *CartStore) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(itemID)
		return
	}
	s.mutate(func(c *domain.Cart) bool {
		_, idx := c.Line(itemID)
		if idx < 0 || c.Lines[idx].Quantity == quantity {
			return false
		}
		c.Lines[idx].Quantity = quantity
		return true
	})
}

func (s *CartStore) RemoveItem(itemID string) {
	s.mutate(func(c *domain.Cart) bool {
		_, idx := c.Line(itemID)
		if idx < 0 {
			return false
		}
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		return true
	})
}

func (s *CartStore) ClearCart() {
	s.mutate(func(c *domain.Cart) bool {
		if c.IsEmpty() && c.RestaurantID == "" {
			return false
		}
		c.Lines = nil
		return true
	})
}

func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartStore) Subscribe(fn func(domain.Cart)) func() {
	s.notifyMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.listeners, id)
			s.notifyMu.Unlock()
		})
	}
}

// mutate applies fn to a copy of the cart and, if fn reports a change,
// normalises it, recomputes the total and publishes the result. The copy is
// swapped in under the lock so no reader sees a partial update.
func (s *CartStore) mutate(fn func(c *domain.Cart) bool) {
	s.mu.Lock()
	next := s.cart.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	if len(next.Lines) == 0 {
		next.Lines = nil
		next.RestaurantID = ""
	}
	next.TotalAmount = next.ComputeTotal()
	s.cart = next

	s.version++

	if s.persister != nil && !s.closed {
		s.persister.enqueue(next.Clone())
	}
	s.mu.Unlock()

	s.publish()
}

// publish hands the latest snapshot to listeners. Concurrent mutations may
// coalesce, but listeners never see an older snapshot after a newer one.
func (s *CartStore) publish() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	snap, ver := s.cart.Clone(), s.version
	s.mu.Unlock()

	if ver <= s.notified {
		return
	}
	s.notified = ver
	for _, fn := range s.listeners {
		fn(snap.Clone())
	}
}

// Load hydrates the cart from storage. A missing or unreadable blob leaves
// the cart empty; the error is logged only.
func (s *CartStore) Load(ctx context.Context) {
	if s.persister == nil {
		return
	}
	loaded, ok := s.persister.load(ctx)
	if !ok {
		return
	}

	s.mu.Lock()
	s.cart = loaded
	s.version++
	s.mu.Unlock()

	s.publish()
}

// Close stops accepting writes and waits for the last snapshot to be persisted.
func (s *CartStore) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.persister == nil {
		s.closed = true
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.persister.stop()
	s.mu.Unlock()

	return s.persister.wait(ctx)
}
