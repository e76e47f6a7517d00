package strategy

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// MaxProfit is a profit figure that may be unbounded.
type MaxProfit struct {
	Value     float64
	Unbounded bool
}

// Unlimited is the sentinel returned for positions without a profit cap.
var Unlimited = MaxProfit{Unbounded: true}

// String renders the figure to two decimals, or "Unlimited".
func (m MaxProfit) String() string {
	if m.Unbounded {
		return "Unlimited"
	}
	return "$" + decimal.NewFromFloat(m.Value).StringFixed(2)
}

// MarshalJSON encodes unbounded profit as the string "Unlimited" and bounded profit as a number.
func (m MaxProfit) MarshalJSON() ([]byte, error) {
	if m.Unbounded {
		return json.Marshal("Unlimited")
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts either form produced by MarshalJSON.
func (m *MaxProfit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Unlimited
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MaxProfit{Value: v}
	return nil
}

// MaxProfitFor returns the maximum theoretical profit per share.
//
// For a long put the intrinsic value is measured at the current spot rather than at
// an underlying price of zero, so the figure is what the put is worth now, net of premium.
func MaxProfitFor(v Variant, premium, strike, spot float64) MaxProfit {
	switch v {
	case LongCall:
		return Unlimited
	case ShortCall, ShortPut:
		return MaxProfit{Value: premium}
	case LongPut:
		return MaxProfit{Value: math.Max(strike-spot, 0) - premium}
	}
	return MaxProfit{}
}

// ProbabilityOfProfit returns a coarse label that only depends on the variant.
// Bullish ({LongCall, ShortPut}) and bearish ({LongPut, ShortCall}) positions both
// map to ProbabilityOfProfitLabel; this is an approximation, not a derived probability.
func ProbabilityOfProfit(v Variant) string {
	switch v {
	case LongCall, ShortPut:
		return ProbabilityOfProfitLabel
	case LongPut, ShortCall:
		return ProbabilityOfProfitLabel
	}
	return "N/A"
}

// Margin is an estimated capital requirement. Applicable is false only for
// values outside the four variants.
type Margin struct {
	Value      float64
	Applicable bool
}

// String renders the margin to two decimals, or "N/A".
func (m Margin) String() string {
	if !m.Applicable {
		return "N/A"
	}
	return "$" + decimal.NewFromFloat(m.Value).StringFixed(2)
}

// MarshalJSON encodes an inapplicable margin as null.
func (m Margin) MarshalJSON() ([]byte, error) {
	if !m.Applicable {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Margin) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*m = Margin{}
		return nil
	}
	*m = Margin{Value: *v, Applicable: true}
	return nil
}

// EstimatedMargin returns the premium for long positions and the premium plus
// MarginRate of notional (strike × ContractMultiplier × ContractCount) for short ones.
func EstimatedMargin(v Variant, premium, strike float64) Margin {
	switch v {
	case ShortCall, ShortPut:
		return Margin{Value: premium + MarginRate*strike*ContractMultiplier*ContractCount, Applicable: true}
	case LongCall, LongPut:
		return Margin{Value: premium, Applicable: true}
	}
	return Margin{}
}

// FlowKind tells whether opening a position pays or collects premium.
type FlowKind string

const (
	Debit  FlowKind = "debit"
	Credit FlowKind = "credit"
)

// NetFlow is the cash exchanged to open a position.
type NetFlow struct {
	Kind   FlowKind `json:"kind"`
	Amount float64  `json:"amount"`
}

// String renders "Net Debit: $5.00" or "Net Credit: $5.00".
func (n NetFlow) String() string {
	label := "Net Debit"
	if n.Kind == Credit {
		label = "Net Credit"
	}
	return label + ": $" + decimal.NewFromFloat(n.Amount).StringFixed(2)
}

// NetLabel returns a debit of premium for long variants and a credit for short ones.
func NetLabel(v Variant, premium float64) NetFlow {
	if v.IsShort() {
		return NetFlow{Kind: Credit, Amount: premium}
	}
	return NetFlow{Kind: Debit, Amount: premium}
}
