package cli

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/models"
)

// summaryHeaders are the columns of the strategy summary table.
var summaryHeaders = []string{"Ticker", "Net Debit/Credit", "Max Profit", "Chance of Profit", "Estimated Margin", "Theta"}

// summaryRow returns the summary table cells for s, in summaryHeaders order.
func summaryRow(s *models.StrategySummary) []string {
	return []string{
		s.Ticker,
		s.NetFlow.String(),
		s.MaxProfit.String(),
		s.ProbabilityOfProfit,
		s.EstimatedMargin.String(),
		s.ThetaLabel(),
	}
}

// FormatStrike renders a strike without trailing zeros, e.g. 102.5 or 105.
func FormatStrike(strike float64) string {
	return decimal.NewFromFloat(strike).String()
}

// FormatStrikes joins strikes for a compact listing.
func FormatStrikes(strikes []float64) string {
	parts := make([]string, len(strikes))
	for i, k := range strikes {
		parts[i] = FormatStrike(k)
	}
	return strings.Join(parts, "  ")
}

// FormatExpiry renders an expiration date, or "-" for manual evaluations.
func FormatExpiry(expiry time.Time) string {
	if expiry.IsZero() {
		return "-"
	}
	return expiry.Format("2006-01-02")
}

// FormatTimestamp renders a stored time in the local zone.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// shortID abbreviates an evaluation ID for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// userError replaces market-data failures with the generic retrieval message.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if errors.IsDataFailure(err) {
		return errors.NewDataError("market_data", "", errors.UnableToRetrieve, err)
	}
	return err
}

// ErrorMessage is the text shown to the user for err.
func ErrorMessage(err error) string {
	var de *errors.DataError
	if errors.As(err, &de) && de.Message == errors.UnableToRetrieve {
		return errors.UnableToRetrieve
	}
	return err.Error()
}
