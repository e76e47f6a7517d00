package strategy

import (
	"encoding/json"
	"math"
)

// Point is the per-share profit or loss at one hypothetical spot price.
type Point struct {
	Spot float64 `json:"spot"`
	PnL  float64 `json:"pnl"`
}

// Curve is a payoff profile in the order of the sweep that produced it.
type Curve []Point

// PayoffCurve evaluates the expiration payoff at every price in sweep.
// The result has the same length and order as sweep; an empty sweep yields an empty curve.
func PayoffCurve(v Variant, strike, premium float64, sweep []float64) Curve {
	curve := make(Curve, len(sweep))
	for i, p := range sweep {
		curve[i] = Point{Spot: p, PnL: PayoffAt(v, strike, premium, p)}
	}
	return curve
}

// PayoffAt returns the per-share profit or loss at spot p.
func PayoffAt(v Variant, strike, premium, p float64) float64 {
	switch v {
	case LongCall:
		return math.Max(p-strike, 0) - premium
	case ShortCall:
		return premium - math.Max(p-strike, 0)
	case LongPut:
		return math.Max(strike-p, 0) - premium
	case ShortPut:
		return premium - math.Max(strike-p, 0)
	}
	return 0
}

// MarshalJSON encodes a nil curve as an empty array.
func (c Curve) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Point(c))
}

// Spots returns the x values of the curve.
func (c Curve) Spots() []float64 {
	out := make([]float64, len(c))
	for i, pt := range c {
		out[i] = pt.Spot
	}
	return out
}

// PnLs returns the y values of the curve.
func (c Curve) PnLs() []float64 {
	out := make([]float64, len(c))
	for i, pt := range c {
		out[i] = pt.PnL
	}
	return out
}

// Bounds returns the lowest and highest PnL on the curve, or zeros when it is empty.
func (c Curve) Bounds() (lo, hi float64) {
	if len(c) == 0 {
		return 0, 0
	}
	lo, hi = c[0].PnL, c[0].PnL
	for _, pt := range c[1:] {
		lo = math.Min(lo, pt.PnL)
		hi = math.Max(hi, pt.PnL)
	}
	return lo, hi
}
