package grpc

import "github.com/fjod/yofoo_cart/internal/domain"

const ServiceName = "yofoo.cart.v1.CartService"

type GetCartRequest struct{}

type AddItemRequest struct {
	Item         domain.MenuItem `json:"item"`
	RestaurantID string          `json:"restaurantId"`
}

type UpdateQuantityRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type RemoveItemRequest struct {
	ItemID string `json:"itemId"`
}

type ClearCartRequest struct{}

type CartResponse struct {
	Cart domain.Cart `json:"cart"`
	Bill domain.Bill `json:"bill"`
}
