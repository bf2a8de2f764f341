package http

import (
	"context"
	"net/http"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/go-chi/chi/v5"
)

type OrdersReader interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders OrdersReader
}

func NewOrdersHandler(orders OrdersReader) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
