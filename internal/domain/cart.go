package domain

import (
	"github.com/shopspring/decimal"
)

// MenuItem is the item descriptor the presentation layer hands to the cart.
// Only ID, Name and Price take part in cart arithmetic.
type MenuItem struct {
	ID           string          `json:"id"`
	CategoryID   string          `json:"categoryId,omitempty"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        *string         `json:"image,omitempty"`
	Type         *string         `json:"type,omitempty"`
	IsAvailable  bool            `json:"isAvailable"`
	IsBestseller bool            `json:"isBestseller"`
	SpiceLevel   *string         `json:"spiceLevel,omitempty"`
	PrepTime     *int            `json:"prepTime,omitempty"`
}

type CartLine struct {
	MenuItem
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity for a single line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a snapshot of the cart state. An empty RestaurantID means the cart
// has no owning restaurant, which holds exactly when Lines is empty.
type Cart struct {
	Lines        []CartLine      `json:"items"`
	RestaurantID string          `json:"restaurantId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ComputeTotal recomputes the sum of price*quantity from scratch.
func (c Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Line returns the line for itemID and its index, or -1 when absent.
func (c Cart) Line(itemID string) (CartLine, int) {
	for i, l := range c.Lines {
		if l.ID == itemID {
			return l, i
		}
	}
	return CartLine{}, -1
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Clone() Cart {
	out := Cart{RestaurantID: c.RestaurantID, TotalAmount: c.TotalAmount}
	if c.Lines != nil {
		out.Lines = make([]CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}

// OrderItems projects the cart into the backend's create-order item list.
func (c Cart) OrderItems() []OrderItemRequest {
	items := make([]OrderItemRequest, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, OrderItemRequest{MenuItemID: l.ID, Quantity: l.Quantity})
	}
	return items
}
