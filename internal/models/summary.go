package models

import (
	"time"

	"github.com/shopspring/decimal"

	"options-visualizer/internal/strategy"
)

// StrategySummary is the display-ready record for one evaluated position.
type StrategySummary struct {
	ID                  string             `json:"id,omitempty"`
	Ticker              string             `json:"ticker"`
	Expiry              time.Time          `json:"expiry"`
	Spot                float64            `json:"spot"`
	Strategy            strategy.Variant   `json:"strategy"`
	Strike              float64            `json:"strike"`
	Premium             float64            `json:"premium"`
	NetFlow             strategy.NetFlow   `json:"net_flow"`
	MaxProfit           strategy.MaxProfit `json:"max_profit"`
	ProbabilityOfProfit string             `json:"probability_of_profit"`
	EstimatedMargin     strategy.Margin    `json:"estimated_margin"`
	Theta               *float64           `json:"theta,omitempty"`
	Curve               strategy.Curve     `json:"curve"`
	CreatedAt           time.Time          `json:"created_at"`
}

// Position returns the engine input the summary was built from.
func (s *StrategySummary) Position() strategy.Position {
	return strategy.Position{Variant: s.Strategy, Strike: s.Strike, Premium: s.Premium}
}

// ThetaLabel renders theta with four decimals, or "N/A" when the provider had none.
func (s *StrategySummary) ThetaLabel() string {
	if s.Theta == nil {
		return "N/A"
	}
	return decimal.NewFromFloat(*s.Theta).StringFixed(4)
}

// NewStrategySummary assembles the engine metrics for p at spot.
// The curve is left to the caller since it depends on the sweep.
func NewStrategySummary(ticker string, expiry time.Time, spot float64, p strategy.Position, theta *float64) *StrategySummary {
	m := strategy.Evaluate(p, spot)
	return &StrategySummary{
		Ticker:              ticker,
		Expiry:              expiry,
		Spot:                spot,
		Strategy:            p.Variant,
		Strike:              p.Strike,
		Premium:             p.Premium,
		NetFlow:             m.NetFlow,
		MaxProfit:           m.MaxProfit,
		ProbabilityOfProfit: m.ProbabilityOfProfit,
		EstimatedMargin:     m.EstimatedMargin,
		Theta:               theta,
		CreatedAt:           time.Now().UTC(),
	}
}
