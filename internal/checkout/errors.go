package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/yofoo_cart/internal/wallet"
)

var (
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrAttemptInProgress = errors.New("a payment is already in progress")
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrBalanceLoading is returned by wallet checkouts started before the
	// balance has arrived. Nothing is sent to the backend.
	ErrBalanceLoading = wallet.ErrBalanceLoading
)

const (
	MessageCheckoutFailed = "Payment could not be completed. Please try again."
	MessageTopUpFailed    = "Top-up failed. Please try again."
	MessageOrderFailed    = "Something went wrong while placing your order."
	MessageInsufficient   = "Insufficient wallet balance"
	MessageBalanceFailed  = "Could not load your wallet balance. Please try again."
)

// ValidationError rejects an attempt before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
