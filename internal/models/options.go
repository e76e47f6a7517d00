package models

import (
	"sort"
	"time"
)

// OptionChain represents the calls and puts listed for one expiration.
type OptionChain struct {
	Symbol    string         `json:"symbol"`
	SpotPrice float64        `json:"spot_price"`
	Expiry    time.Time      `json:"expiry"`
	Strikes   []OptionStrike `json:"strikes"`
}

// OptionStrike represents a single strike in the option chain.
type OptionStrike struct {
	Strike float64     `json:"strike"`
	Call   *OptionData `json:"call,omitempty"`
	Put    *OptionData `json:"put,omitempty"`
}

// OptionData represents option data for a single contract.
type OptionData struct {
	ContractSymbol string   `json:"contract_symbol,omitempty"`
	LastPrice      float64  `json:"last_price"`
	Bid            float64  `json:"bid"`
	Ask            float64  `json:"ask"`
	Volume         int64    `json:"volume"`
	OpenInterest   int64    `json:"open_interest"`
	IV             float64  `json:"implied_volatility"`
	Theta          *float64 `json:"theta,omitempty"` // not every provider publishes greeks
}

// CallStrikes returns the strikes that list a call, sorted ascending.
func (c *OptionChain) CallStrikes() []float64 {
	out := make([]float64, 0, len(c.Strikes))
	for _, s := range c.Strikes {
		if s.Call != nil {
			out = append(out, s.Strike)
		}
	}
	sort.Float64s(out)
	return out
}

// Lookup returns the strike row for strike, if listed.
func (c *OptionChain) Lookup(strike float64) (OptionStrike, bool) {
	for _, s := range c.Strikes {
		if s.Strike == strike {
			return s, true
		}
	}
	return OptionStrike{}, false
}

// Leg returns the call or put side of the row.
func (s OptionStrike) Leg(t OptionType) *OptionData {
	if t == OptionPut {
		return s.Put
	}
	return s.Call
}
