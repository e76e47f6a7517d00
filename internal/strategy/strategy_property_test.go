package strategy

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())
	return gopter.NewProperties(parameters)
}

// Property: a short position is the exact mirror of the long position on the
// same option at every spot price.
func TestProperty_ShortMirrorsLong(t *testing.T) {
	properties := newProperties()

	properties.Property("ShortX(p) == -LongX(p)", prop.ForAll(
		func(strike, premium float64, sweep []float64) bool {
			pairs := [][2]Variant{{LongCall, ShortCall}, {LongPut, ShortPut}}
			for _, pair := range pairs {
				long := PayoffCurve(pair[0], strike, premium, sweep)
				short := PayoffCurve(pair[1], strike, premium, sweep)
				for i := range long {
					if short[i].PnL != -long[i].PnL {
						return false
					}
				}
			}
			return true
		},
		gen.Float64Range(1, 5000),
		gen.Float64Range(0, 500),
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.TestingRun(t)
}

// Property: the curve is a one-to-one, order-preserving map of the sweep.
func TestProperty_CurvePreservesSweep(t *testing.T) {
	properties := newProperties()

	properties.Property("len and spots match the sweep", prop.ForAll(
		func(idx int, strike, premium float64, sweep []float64) bool {
			v := Variants()[idx]
			curve := PayoffCurve(v, strike, premium, sweep)
			if len(curve) != len(sweep) {
				return false
			}
			for i, p := range sweep {
				if curve[i].Spot != p {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3),
		gen.Float64Range(1, 5000),
		gen.Float64Range(0, 500),
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.TestingRun(t)
}

func TestProperty_MaxProfitRules(t *testing.T) {
	properties := newProperties()

	properties.Property("long call is always unbounded", prop.ForAll(
		func(premium, strike, spot float64) bool {
			return MaxProfitFor(LongCall, premium, strike, spot) == Unlimited
		},
		gen.Float64Range(-100, 500),
		gen.Float64Range(0, 5000),
		gen.Float64Range(0, 10000),
	))

	properties.Property("short max profit equals premium", prop.ForAll(
		func(premium, strike, spot float64) bool {
			sc := MaxProfitFor(ShortCall, premium, strike, spot)
			sp := MaxProfitFor(ShortPut, premium, strike, spot)
			return sc == sp && !sc.Unbounded && sc.Value == premium
		},
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 5000),
		gen.Float64Range(0, 10000),
	))

	properties.TestingRun(t)
}

func TestProperty_MarginRules(t *testing.T) {
	properties := newProperties()

	properties.Property("short margin exceeds premium for positive strikes", prop.ForAll(
		func(premium, strike float64) bool {
			return EstimatedMargin(ShortCall, premium, strike).Value > premium &&
				EstimatedMargin(ShortPut, premium, strike).Value > premium
		},
		gen.Float64Range(0, 500),
		gen.Float64Range(0.01, 5000),
	))

	properties.Property("long margin equals premium", prop.ForAll(
		func(premium, strike float64) bool {
			return EstimatedMargin(LongCall, premium, strike).Value == premium &&
				EstimatedMargin(LongPut, premium, strike).Value == premium
		},
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 5000),
	))

	properties.TestingRun(t)
}

// Property: repeated evaluation yields identical output.
func TestProperty_Idempotent(t *testing.T) {
	properties := newProperties()

	properties.Property("evaluate twice, same result", prop.ForAll(
		func(idx int, strike, premium, spot float64, sweep []float64) bool {
			p := Position{Variant: Variants()[idx], Strike: strike, Premium: premium}
			if Evaluate(p, spot) != Evaluate(p, spot) {
				return false
			}
			a := PayoffCurve(p.Variant, strike, premium, sweep)
			b := PayoffCurve(p.Variant, strike, premium, sweep)
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3),
		gen.Float64Range(1, 5000),
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 10000),
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.TestingRun(t)
}
