package wallet

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("please enter a valid amount")

// QuickAmounts are the preset top-up buttons.
var QuickAmounts = []int64{100, 200, 500, 1000, 2000}

var minTopUp = decimal.NewFromInt(1)

func ValidateTopUpAmount(amount decimal.Decimal) error {
	if amount.LessThan(minTopUp) {
		return ErrInvalidAmount
	}
	return nil
}
