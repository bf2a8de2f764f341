package outbox

import (
	"time"

	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	Topic = "yofoo-checkout-events"

	EventOrderOrphaned     = "order.orphaned"
	EventCheckoutCompleted = "checkout.completed"
)

// OrphanedOrder is an order the backend created for an attempt that then
// failed. Nothing cancels it automatically.
type OrphanedOrder struct {
	OrderID        string             `json:"order_id"`
	AttemptID      string             `json:"attempt_id"`
	GatewayOrderID string             `json:"gateway_order_id,omitempty"`
	Mode           domain.PaymentMode `json:"payment_mode"`
	Amount         decimal.Decimal    `json:"amount"`
	Phase          domain.Phase       `json:"failed_in_phase,omitempty"`
	Reason         string             `json:"reason"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

type CompletedCheckout struct {
	OrderID      string             `json:"order_id"`
	AttemptID    string             `json:"attempt_id"`
	RestaurantID string             `json:"restaurant_id,omitempty"`
	Mode         domain.PaymentMode `json:"payment_mode"`
	Amount       decimal.Decimal    `json:"amount"`
	CompletedAt  time.Time          `json:"completed_at"`
}
