package cart

import "github.com/fjod/yofoo_cart/internal/domain"

// Store is the draft order on this device. Mutations never fail: they are
// applied in memory and persisted in the background.
type Store interface {
	// AddItem increments the item's line or appends it with quantity 1. An
	// item from a restaurant other than the current owner replaces the cart.
	AddItem(item domain.MenuItem, restaurantID string)
	// UpdateQuantity sets the line's quantity; quantity <= 0 removes the line.
	UpdateQuantity(itemID string, quantity int)
	RemoveItem(itemID string)
	ClearCart()
	Snapshot() domain.Cart
	// Subscribe registers fn to receive a snapshot after every mutation.
	// fn must not mutate the store synchronously.
	Subscribe(fn func(domain.Cart)) (unsubscribe func())
}
