package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeBackend serves the slice of the REST backend the daemon talks to.
type FakeBackend struct {
	mu sync.Mutex

	Balance       float64
	WalletGate    chan struct{}
	OrderStatus   int
	Transactions  [][]map[string]any
	CreatedOrders []map[string]any
	Verified      []map[string]any

	server *httptest.Server
}

func newFakeBackend(t *testing.T) *FakeBackend {
	b := &FakeBackend{Balance: 1000, OrderStatus: http.StatusCreated}

	r := chi.NewRouter()
	r.Post("/api/orders", b.createOrder)
	r.Get("/api/orders/my-history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "ord_1", "status": "PLACED", "totalAmount": 297},
			{"id": "ord_0", "status": "DELIVERED", "totalAmount": 120},
		})
	})
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id != "ord_1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Order not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "PLACED", "totalAmount": 297})
	})
	r.Post("/api/payments/create-order", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			OrderID string `json:"orderId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, map[string]any{
			"orderId":       in.OrderID,
			"razorpayOrder": map[string]any{"id": "gw_1", "amount": 24000, "currency": "INR"},
		})
	})
	r.Post("/api/payments/verify", b.verify)
	r.Post("/api/wallet/topup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"topupRequestId": "tu_1",
			"razorpayOrder":  map[string]any{"id": "gw_topup", "amount": 50000, "currency": "INR"},
		})
	})
	r.Post("/api/wallet/topup/verify", b.verify)
	r.Get("/api/wallet", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		gate := b.WalletGate
		b.mu.Unlock()
		if gate != nil {
			<-gate
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"id": "w1", "userId": "u1", "balance": b.Balance})
	})
	r.Get("/api/wallet/transactions", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 || page > len(b.Transactions) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "meta": map[string]any{"page": page, "totalPages": len(b.Transactions)}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": b.Transactions[page-1],
			"meta": map[string]any{"page": page, "limit": 10, "totalPages": len(b.Transactions)},
		})
	})
	r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "name": "Asha", "email": "asha@example.com"})
	})

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

func (b *FakeBackend) URL() string { return b.server.URL }

func (b *FakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	b.CreatedOrders = append(b.CreatedOrders, in)
	status := b.OrderStatus
	b.mu.Unlock()

	if status != http.StatusCreated {
		writeJSON(w, status, map[string]any{"message": "Restaurant is closed"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": "ord_1", "status": "PLACED", "paymentMode": in["paymentMode"]})
}

func (b *FakeBackend) verify(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	b.Verified = append(b.Verified, in)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *FakeBackend) Orders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.CreatedOrders)
}

func (b *FakeBackend) VerifyCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Verified)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
