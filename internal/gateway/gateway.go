package gateway

import (
	"context"
	"fmt"
)

// Error codes reported by the gateway's checkout UI.
const (
	CodeCancelled      = 0
	CodeNetworkError   = 2
	CodeInvalidOptions = 3
	CodeTLSError       = 4
	CodeUnknown        = 5
)

const CancelledDescription = "Payment cancelled by user"

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Options is what the checkout UI is opened with. Amount is in minor units.
type Options struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Currency    string  `json:"currency"`
	Amount      int64   `json:"amount"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	ThemeColor  string  `json:"theme_color,omitempty"`
}

func (o Options) Validate() error {
	if o.OrderID == "" {
		return &Error{Code: CodeInvalidOptions, Description: "order_id is required"}
	}
	if o.Amount <= 0 {
		return &Error{Code: CodeInvalidOptions, Description: "amount must be positive"}
	}
	return nil
}

// Result is the gateway's success payload.
type Result struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// Error is a cancellation or failure reported by the checkout UI.
type Error struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	Step        string `json:"step,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Description)
}

func (e *Error) Cancelled() bool {
	return e.Code == CodeCancelled
}

// Checkout opens the gateway's payment UI and blocks until the user finishes.
// Failures and cancellation are returned as *Error.
type Checkout interface {
	Open(ctx context.Context, opts Options) (*Result, error)
}
