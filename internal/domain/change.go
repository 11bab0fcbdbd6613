package domain

import "github.com/shopspring/decimal"

// PercentChange returns the signed period-over-period change in percent.
// A missing previous value is passed as 0; zero or negative previous values
// yield 0 rather than dividing by zero. The result is not clamped.
func PercentChange(previous, current float64) float64 {
	if previous <= 0 {
		return 0
	}
	prev := decimal.NewFromFloat(previous)
	cur := decimal.NewFromFloat(current)
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
