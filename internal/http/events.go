package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/yofoo_cart/internal/cart"
	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/gateway"
	"github.com/gorilla/websocket"
)

const (
	EventConnected      = "connected"
	EventCartUpdated    = "cart_updated"
	EventCheckoutPhase  = "checkout_phase"
	EventTopUpPhase     = "topup_phase"
	EventPaymentSession = "payment_session"

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	clientBuffer = 32
)

// Event is one frame on the events stream.
type Event struct {
	Type      string                 `json:"type"`
	Cart      *domain.Cart           `json:"cart,omitempty"`
	Bill      *domain.Bill           `json:"bill,omitempty"`
	Attempt   *domain.PaymentAttempt `json:"attempt,omitempty"`
	Session   *gateway.Session       `json:"session,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AttemptSource is a checkout or top-up flow.
type AttemptSource interface {
	State() domain.PaymentAttempt
	Subscribe(fn func(domain.PaymentAttempt)) func()
}

type client struct {
	send chan Event
}

// Hub fans events out to every connected websocket. Publish never blocks; a
// client that falls behind loses frames.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	store    cart.Store
	checkout AttemptSource
	topUp    AttemptSource
}

// NewHub accepts websocket upgrades from loopback pages and from
// allowedOrigins.
func NewHub(log *slog.Logger, allowedOrigins ...string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

func cartEvent(c domain.Cart) Event {
	bill := domain.NewBill(c.TotalAmount)
	return Event{Type: EventCartUpdated, Cart: &c, Bill: &bill, Timestamp: time.Now()}
}

func attemptEvent(typ string, a domain.PaymentAttempt) Event {
	return Event{Type: typ, Attempt: &a, Timestamp: time.Now()}
}

// Watch subscribes the hub to the cart and both payment flows. topUp may be nil.
func (h *Hub) Watch(store cart.Store, checkout, topUp AttemptSource) (stop func()) {
	h.mu.Lock()
	h.store, h.checkout, h.topUp = store, checkout, topUp
	h.mu.Unlock()

	stops := []func(){
		store.Subscribe(func(c domain.Cart) { h.Publish(cartEvent(c)) }),
		checkout.Subscribe(func(a domain.PaymentAttempt) { h.Publish(attemptEvent(EventCheckoutPhase, a)) }),
	}
	if topUp != nil {
		stops = append(stops, topUp.Subscribe(func(a domain.PaymentAttempt) { h.Publish(attemptEvent(EventTopUpPhase, a)) }))
	}
	return func() {
		for _, s := range stops {
			s()
		}
	}
}

// NotifySession is the gateway bridge's notify hook.
func (h *Hub) NotifySession(s gateway.Session) {
	h.Publish(Event{Type: EventPaymentSession, Session: &s, Timestamp: time.Now()})
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.log.Warn("events client is behind, dropping frame", "type", ev.Type)
		}
	}
}

func (h *Hub) register() *client {
	c := &client{send: make(chan Event, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// snapshot is what a new client sees first.
func (h *Hub) snapshot() []Event {
	h.mu.Lock()
	store, checkout, topUp := h.store, h.checkout, h.topUp
	h.mu.Unlock()

	out := []Event{{Type: EventConnected, Timestamp: time.Now()}}
	if store != nil {
		out = append(out, cartEvent(store.Snapshot()))
	}
	if checkout != nil {
		out = append(out, attemptEvent(EventCheckoutPhase, checkout.State()))
	}
	if topUp != nil {
		out = append(out, attemptEvent(EventTopUpPhase, topUp.State()))
	}
	return out
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := h.register()
	defer h.unregister(c)

	for _, ev := range h.snapshot() {
		if err := h.write(conn, ev); err != nil {
			return
		}
	}

	// reads only to notice the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-c.send:
			if err := h.write(conn, ev); err != nil {
				h.log.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, ev Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}
