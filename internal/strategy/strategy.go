// Package strategy computes payoff and risk metrics for single-leg option positions.
//
// Every function in this package is pure: results depend only on the arguments,
// nothing is cached, and no I/O happens. All functions are safe for concurrent use.
package strategy

import (
	"fmt"
	"strings"

	"options-visualizer/internal/errors"
)

// Variant identifies one of the four single-leg strategies.
type Variant int

const (
	LongCall Variant = iota + 1
	ShortCall
	LongPut
	ShortPut
)

const (
	// ContractMultiplier is the number of shares covered by one contract.
	ContractMultiplier = 100
	// ContractCount is the number of contracts every evaluation assumes.
	ContractCount = 1
	// MarginRate is the flat share of notional added to short positions.
	// It is a heuristic, not a broker margin rule.
	MarginRate = 0.10
	// ProbabilityOfProfitLabel is a fixed placeholder; no model backs it.
	ProbabilityOfProfitLabel = "50%"
)

// Variants returns the four variants in display order.
func Variants() []Variant {
	return []Variant{LongCall, LongPut, ShortCall, ShortPut}
}

// String returns the display name of the variant.
func (v Variant) String() string {
	switch v {
	case LongCall:
		return "Long Call"
	case ShortCall:
		return "Short Call"
	case LongPut:
		return "Long Put"
	case ShortPut:
		return "Short Put"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Slug returns the kebab-case form used by flags and query parameters.
func (v Variant) Slug() string {
	return strings.ReplaceAll(strings.ToLower(v.String()), " ", "-")
}

// IsLong reports whether the position is bought.
func (v Variant) IsLong() bool {
	return v == LongCall || v == LongPut
}

// IsShort reports whether the position is sold.
func (v Variant) IsShort() bool {
	return v == ShortCall || v == ShortPut
}

// IsCall reports whether the position is on a call.
func (v Variant) IsCall() bool {
	return v == LongCall || v == ShortCall
}

// IsPut reports whether the position is on a put.
func (v Variant) IsPut() bool {
	return v == LongPut || v == ShortPut
}

// Valid reports whether v is one of the four defined variants.
func (v Variant) Valid() bool {
	return v >= LongCall && v <= ShortPut
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariant accepts "Long Call", "long-call", "long_call" or "longcall" in any case.
func ParseVariant(s string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "longcall":
		return LongCall, nil
	case "shortcall":
		return ShortCall, nil
	case "longput":
		return LongPut, nil
	case "shortput":
		return ShortPut, nil
	}
	return 0, errors.NewValidationError("strategy", s, "must be one of long-call, short-call, long-put, short-put")
}

// Position is the input to every evaluation.
type Position struct {
	Variant Variant `json:"strategy"`
	Strike  float64 `json:"strike"`
	Premium float64 `json:"premium"`
}

// Metrics aggregates the independent risk results for one position.
type Metrics struct {
	MaxProfit           MaxProfit `json:"max_profit"`
	ProbabilityOfProfit string    `json:"probability_of_profit"`
	EstimatedMargin     Margin    `json:"estimated_margin"`
	NetFlow             NetFlow   `json:"net_flow"`
}

// Evaluate runs the four metric operations for p at the given spot price.
func Evaluate(p Position, spot float64) Metrics {
	return Metrics{
		MaxProfit:           MaxProfitFor(p.Variant, p.Premium, p.Strike, spot),
		ProbabilityOfProfit: ProbabilityOfProfit(p.Variant),
		EstimatedMargin:     EstimatedMargin(p.Variant, p.Premium, p.Strike),
		NetFlow:             NetLabel(p.Variant, p.Premium),
	}
}
