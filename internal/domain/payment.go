package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode must match the backend enum.
type PaymentMode string

const (
	PaymentModeCOD        PaymentMode = "COD"
	PaymentModeWallet     PaymentMode = "WALLET"
	PaymentModeGateway    PaymentMode = "RAZORPAY"
	PaymentModeUPI        PaymentMode = "UPI"
	PaymentModeCard       PaymentMode = "CARD"
	PaymentModeNetBanking PaymentMode = "NETBANKING"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCOD, PaymentModeWallet, PaymentModeGateway,
		PaymentModeUPI, PaymentModeCard, PaymentModeNetBanking:
		return true
	}
	return false
}

// Checkoutable reports whether the orchestrator can drive a checkout in this mode.
func (m PaymentMode) Checkoutable() bool {
	return m == PaymentModeCOD || m == PaymentModeWallet || m == PaymentModeGateway
}

type AttemptKind string

const (
	AttemptKindCheckout AttemptKind = "checkout"
	AttemptKindTopUp    AttemptKind = "topup"
)

type ErrorKind string

const (
	ErrorKindNone                ErrorKind = ""
	ErrorKindValidation          ErrorKind = "validation"
	ErrorKindInsufficientBalance ErrorKind = "insufficient_balance"
	ErrorKindRemote              ErrorKind = "remote"
	ErrorKindExternalPayment     ErrorKind = "external_payment"
)

// PaymentAttempt is the observable state of one checkout or top-up.
type PaymentAttempt struct {
	ID             string          `json:"id"`
	Kind           AttemptKind     `json:"kind"`
	Mode           PaymentMode     `json:"paymentMode,omitempty"`
	Phase          Phase           `json:"phase"`
	Amount         decimal.Decimal `json:"amount"`
	OrderID        string          `json:"orderId,omitempty"`
	GatewayOrderID string          `json:"gatewayOrderId,omitempty"`
	Error          string          `json:"error,omitempty"`
	ErrorKind      ErrorKind       `json:"errorKind,omitempty"`
	StartedAt      time.Time       `json:"startedAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// PaymentIntent is the backend's answer to a create-order or top-up call on
// the gateway side. AmountMinor is in paise.
type PaymentIntent struct {
	GatewayOrder   GatewayOrder    `json:"razorpayOrder"`
	PaymentID      string          `json:"paymentId,omitempty"`
	TopUpRequestID string          `json:"topupRequestId,omitempty"`
	OrderID        string          `json:"orderId,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
}

type GatewayOrder struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

type VerifyPaymentRequest struct {
	GatewayPaymentID string `json:"razorpayPaymentId"`
	GatewayOrderID   string `json:"razorpayOrderId"`
	Signature        string `json:"razorpaySignature"`
	OrderID          string `json:"orderId,omitempty"`
}
