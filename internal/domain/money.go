package domain

import "github.com/shopspring/decimal"

const DefaultCurrency = "INR"

var (
	DeliveryCharge = decimal.NewFromInt(45)
	TaxRate        = decimal.NewFromFloat(0.05)
	hundred        = decimal.NewFromInt(100)
)

// ToMinorUnits converts a major-unit amount (rupees) to minor units (paise),
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Bill is the breakdown shown on the checkout screen.
type Bill struct {
	ItemTotal      decimal.Decimal `json:"itemTotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Tax            decimal.Decimal `json:"tax"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// NewBill builds the display bill for an item total. An empty cart has no
// delivery charge.
func NewBill(itemTotal decimal.Decimal) Bill {
	if itemTotal.IsZero() {
		return Bill{ItemTotal: itemTotal, DeliveryCharge: decimal.Zero, Tax: decimal.Zero, GrandTotal: decimal.Zero}
	}
	tax := itemTotal.Mul(TaxRate).Round(2)
	return Bill{
		ItemTotal:      itemTotal,
		DeliveryCharge: DeliveryCharge,
		Tax:            tax,
		GrandTotal:     itemTotal.Add(DeliveryCharge).Add(tax),
	}
}

func init() {
	// the backend reads and writes amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}
