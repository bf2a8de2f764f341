package http

import (
	"net/http"

	"github.com/fjod/yofoo_cart/internal/cart"
	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	store cart.Store
}

func NewCartHandler(store cart.Store) *CartHandler {
	return &CartHandler{store: store}
}

type AddItemRequestDTO struct {
	Item         domain.MenuItem `json:"item"`
	RestaurantID string          `json:"restaurantId"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponseDTO struct {
	Cart      domain.Cart `json:"cart"`
	Bill      domain.Bill `json:"bill"`
	ItemCount int         `json:"itemCount"`
}

func (h *CartHandler) response() CartResponseDTO {
	c := h.store.Snapshot()
	return CartResponseDTO{Cart: c, Bill: domain.NewBill(c.TotalAmount), ItemCount: c.ItemCount()}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	switch {
	case req.Item.ID == "":
		respondError(w, http.StatusBadRequest, "invalid_item", "item.id is required")
		return
	case req.Item.Name == "":
		respondError(w, http.StatusBadRequest, "invalid_item", "item.name is required")
		return
	case req.Item.Price.IsNegative():
		respondError(w, http.StatusBadRequest, "invalid_item", "item.price must not be negative")
		return
	case req.RestaurantID == "":
		respondError(w, http.StatusBadRequest, "invalid_restaurant_id", "restaurantId is required")
		return
	}

	h.store.AddItem(req.Item, req.RestaurantID)
	respondJSON(w, http.StatusCreated, h.response())
}

// UpdateQuantity accepts any integer; zero or less removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	h.store.UpdateQuantity(itemID, *req.Quantity)
	respondJSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveItem(chi.URLParam(r, "item_id"))
	respondJSON(w, http.StatusOK, h.response())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart()
	respondJSON(w, http.StatusOK, h.response())
}
