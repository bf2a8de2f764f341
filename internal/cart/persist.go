package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/shopspring/decimal"
)

const (
	persistVersion = 1
	writeTimeout   = 5 * time.Second
)

type persistedState struct {
	Items        []domain.CartLine `json:"items"`
	RestaurantID *string           `json:"restaurantId"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
}

type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

func encode(c domain.Cart) ([]byte, error) {
	st := persistedState{Items: c.Lines, TotalAmount: c.TotalAmount}
	if st.Items == nil {
		st.Items = []domain.CartLine{}
	}
	if c.RestaurantID != "" {
		id := c.RestaurantID
		st.RestaurantID = &id
	}
	return json.Marshal(envelope{State: st, Version: persistVersion})
}

// decode reads any envelope version this app has written. Version 0 blobs
// predate the version field and have the same state shape.
func decode(data []byte, log *slog.Logger) (domain.Cart, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Cart{}, err
	}

	var c domain.Cart
	for _, l := range env.State.Items {
		if l.ID == "" || l.Quantity <= 0 {
			log.Warn("dropping invalid persisted cart line", "item_id", l.ID, "quantity", l.Quantity)
			continue
		}
		c.Lines = append(c.Lines, l)
	}
	if env.State.RestaurantID != nil {
		c.RestaurantID = *env.State.RestaurantID
	}
	if len(c.Lines) == 0 {
		c.Lines = nil
		c.RestaurantID = ""
	} else if c.RestaurantID == "" {
		log.Warn("persisted cart has lines but no restaurant, discarding")
		return domain.Cart{}, nil
	}

	c.TotalAmount = c.ComputeTotal()
	if !env.State.TotalAmount.Equal(c.TotalAmount) {
		log.Warn("persisted cart total differs from recomputation",
			"stored", env.State.TotalAmount.String(), "computed", c.TotalAmount.String())
	}
	return c, nil
}

// persister writes cart snapshots from a single goroutine. The queue holds at
// most one snapshot; a newer one replaces an unwritten older one.
type persister struct {
	backend storage.Storage
	pending chan domain.Cart
	done    chan struct{}
	log     *slog.Logger
}

func newPersister(backend storage.Storage, log *slog.Logger) *persister {
	p := &persister{
		backend: backend,
		pending: make(chan domain.Cart, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	go p.run()
	return p
}

// enqueue must be called with the store lock held so snapshots arrive in order.
func (p *persister) enqueue(c domain.Cart) {
	for {
		select {
		case p.pending <- c:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

func (p *persister) stop() {
	close(p.pending)
}

func (p *persister) wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *persister) run() {
	defer close(p.done)
	for c := range p.pending {
		p.write(c)
	}
}

func (p *persister) write(c domain.Cart) {
	data, err := encode(c)
	if err != nil {
		p.log.Error("failed to encode cart", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.backend.Set(ctx, storage.CartKey, data); err != nil {
		p.log.ErrorContext(ctx, "failed to persist cart", "error", err)
	}
}

func (p *persister) load(ctx context.Context) (domain.Cart, bool) {
	data, err := p.backend.Get(ctx, storage.CartKey)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Cart{}, false
	}
	if err != nil {
		p.log.ErrorContext(ctx, "failed to read persisted cart", "error", err)
		return domain.Cart{}, false
	}

	c, err := decode(data, p.log)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to decode persisted cart", "error", err)
		return domain.Cart{}, false
	}
	return c, true
}
