package calculator

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// CalculateSettledAmount returns the net amount of a payment after
// commission: original × (1 − commission). Commission is a fraction and is
// used as given; values above 1 or below 0 yield negative or amplified
// amounts.
func CalculateSettledAmount(original, commission decimal.Decimal) decimal.Decimal {
	return original.Mul(one.Sub(commission))
}

// Charges splits the deductions on an amount under one set of rates.
type Charges struct {
	Commission     decimal.Decimal
	GST            decimal.Decimal
	WithholdingTax decimal.Decimal
	Net            decimal.Decimal
}

// CalculateCharges applies rate, gst and withholding (all fractions of amount)
// and rounds each part to minor units. Net is amount minus the rounded parts,
// so the parts always add back up to amount.
func CalculateCharges(amount, rate, gst, withholding decimal.Decimal) Charges {
	c := Charges{
		Commission:     amount.Mul(rate).Round(2),
		GST:            amount.Mul(gst).Round(2),
		WithholdingTax: amount.Mul(withholding).Round(2),
	}
	c.Net = amount.Sub(c.Commission).Sub(c.GST).Sub(c.WithholdingTax)
	return c
}

// WithheldCharges breaks down what was actually kept from a payment: original
// minus the settled amount recorded at creation. GST and withholding are
// rounded on original under the given rates; commission takes the rest, so
// the parts always add back up to original even when rounding or the terms
// have drifted since the payment was taken.
func WithheldCharges(original, settled, gst, withholding decimal.Decimal) Charges {
	c := Charges{
		GST:            original.Mul(gst).Round(2),
		WithholdingTax: original.Mul(withholding).Round(2),
		Net:            settled,
	}
	c.Commission = original.Sub(settled).Sub(c.GST).Sub(c.WithholdingTax)
	return c
}
