package book

import "github.com/shopspring/decimal"

// Quantize rounds price down to the nearest multiple of tickSize using
// exact decimal arithmetic, avoiding the float drift that a naive
// math.Floor(price/tick)*tick would accumulate over many book updates.
// Used by the Phemex book updater, which snaps the price of every level
// in each snapshot and incremental frame to the tick size fetched at
// book init. Level itself stays float64 per spec.md §3; this is a
// rounding helper only, not a storage format change.
func Quantize(price, tickSize float64) float64 {
	if tickSize <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tickSize)
	steps := p.Div(t).Floor()
	result, _ := steps.Mul(t).Float64()
	return result
}
