package service

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Totals is the result of the checkout pricing computation
type Totals struct {
	TaxableAmount decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals derives the final charge from a subtotal, a flat discount
// and a percentage tax rate. The discount applies pre-tax and is clamped
// so it can never drive the taxable amount negative. No rounding happens
// here; values stay at full decimal precision and are rounded only for
// display.
func ComputeTotals(subtotal, discount, taxRatePercent decimal.Decimal) Totals {
	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	tax := taxable.Mul(taxRatePercent).Div(oneHundred)

	return Totals{
		TaxableAmount: taxable,
		Tax:           tax,
		Total:         taxable.Add(tax),
	}
}
