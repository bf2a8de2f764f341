package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

type CreateOrderRequest struct {
	RestaurantID string             `json:"restaurantId"`
	Items        []OrderItemRequest `json:"items"`
	PaymentMode  PaymentMode        `json:"paymentMode"`
}

type OrderItem struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	MenuItemID string          `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MenuItem   *MenuItem       `json:"menuItem,omitempty"`
}

type OrderRestaurant struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image,omitempty"`
}

type Order struct {
	ID             string           `json:"id"`
	CustomerID     string           `json:"customerId"`
	RestaurantID   string           `json:"restaurantId"`
	Status         OrderStatus      `json:"status"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	ItemTotal      decimal.Decimal  `json:"itemTotal"`
	Tax            decimal.Decimal  `json:"tax"`
	DeliveryCharge decimal.Decimal  `json:"deliveryCharge"`
	PlatformFee    decimal.Decimal  `json:"platformFee"`
	PaymentMode    PaymentMode      `json:"paymentMode"`
	IsPaid         bool             `json:"isPaid"`
	PlacedAt       time.Time        `json:"placedAt"`
	DeliveredAt    *time.Time       `json:"deliveredAt,omitempty"`
	Restaurant     *OrderRestaurant `json:"restaurant,omitempty"`
	Items          []OrderItem      `json:"items,omitempty"`
}

type MenuCategory struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	RestaurantID string     `json:"restaurantId"`
	Items        []MenuItem `json:"items"`
}

// Restaurant carries only what the cart needs from the restaurant detail call.
type Restaurant struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	IsOpen         bool           `json:"isOpen"`
	MenuCategories []MenuCategory `json:"menuCategories"`
}

// FindMenuItem searches every category for itemID.
func (r Restaurant) FindMenuItem(itemID string) (MenuItem, bool) {
	for _, c := range r.MenuCategories {
		for _, it := range c.Items {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return MenuItem{}, false
}
