package checkout

import (
	"github.com/mserebryaakov/delivery-panel/internal/promo"
	"github.com/shopspring/decimal"
)

type Line struct {
	Price    decimal.Decimal
	Quantity int
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Calculate returns subtotal - discount + deliveryFee, floored at zero. The
// discount is optional and never exceeds the subtotal.
func Calculate(lines []Line, discount *promo.Discount, deliveryFee decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	off := decimal.Zero
	if discount != nil {
		off = discount.Amount(subtotal)
	}

	if deliveryFee.IsNegative() {
		deliveryFee = decimal.Zero
	}
	deliveryFee = deliveryFee.Round(2)

	total := subtotal.Sub(off).Add(deliveryFee)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		Discount:    off,
		DeliveryFee: deliveryFee,
		Total:       total.Round(2),
	}
}
