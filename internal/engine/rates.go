package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// rate returns part/whole as a percentage rounded to two decimals.
// Zero whole yields zero, never a division error.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

// amountPct returns part/whole as a percentage rounded to two
// decimals, computed in exact decimals before the float conversion.
func amountPct(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// money converts an exact amount to float64 at the report boundary.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
