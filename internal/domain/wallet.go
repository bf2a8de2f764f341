package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type WalletBalance struct {
	ID      string          `json:"id"`
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

const (
	TransactionTypeTopUp         = "TOPUP"
	TransactionTypeDebit         = "DEBIT"
	TransactionTypeRefund        = "REFUND"
	TransactionTypeReferralBonus = "REFERRAL_BONUS"
)

type WalletTransaction struct {
	ID        string          `json:"id"`
	WalletID  string          `json:"walletId"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// IsCredit treats top-ups, refunds and any referral bonus variant as money in.
// Unknown types count as debits.
func (t WalletTransaction) IsCredit() bool {
	return t.Type == TransactionTypeTopUp ||
		t.Type == TransactionTypeRefund ||
		strings.HasPrefix(t.Type, TransactionTypeReferralBonus)
}

func (t WalletTransaction) IsDebit() bool {
	return !t.IsCredit()
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type TransactionPage struct {
	Data []WalletTransaction `json:"data"`
	Meta PageMeta            `json:"meta"`
}

func (p TransactionPage) HasNextPage() bool {
	return p.Meta.Page < p.Meta.TotalPages
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type User struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Image       *string `json:"image,omitempty"`
}
