// Package marketdata resolves spot prices, expirations and option chains for an underlying.
package marketdata

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/models"
	"options-visualizer/pkg/utils"
)

// Provider defines the interface for option market data.
type Provider interface {
	// GetQuote returns the latest price of the underlying.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	// GetExpirations lists the option expiration dates, earliest first.
	GetExpirations(ctx context.Context, symbol string) ([]time.Time, error)
	// GetOptionChain returns calls and puts for one expiration.
	GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error)
}

// Tickers, index symbols (^SPX), share classes (BRK-B, BF.B) and futures (ES=F).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.=&-]{0,19}$`)

// ValidateSymbol checks a normalized ticker before it is sent to a provider.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return errors.NewValidationError("symbol", symbol, "ticker is required")
	}
	if !symbolPattern.MatchString(symbol) {
		return errors.NewValidationError("symbol", symbol, "invalid ticker format")
	}
	return nil
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// StrikeWindow keeps up to n strikes strictly above spot and up to n strictly
// below it, returned ascending without duplicates. A strike equal to spot is dropped.
func StrikeWindow(strikes []float64, spot float64, n int) []float64 {
	sorted := append([]float64(nil), strikes...)
	sort.Float64s(sorted)

	var above, below []float64
	for _, s := range sorted {
		if s > spot && len(above) < n && (len(above) == 0 || above[len(above)-1] != s) {
			above = append(above, s)
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		s := sorted[i]
		if s < spot && len(below) < n && (len(below) == 0 || below[len(below)-1] != s) {
			below = append(below, s)
		}
	}

	window := make([]float64, 0, len(above)+len(below))
	for i := len(below) - 1; i >= 0; i-- {
		window = append(window, below[i])
	}
	return append(window, above...)
}

// ExpiryLabel renders an expiration as "5d (2026-10-23)".
func ExpiryLabel(expiry, now time.Time) string {
	return fmt.Sprintf("%dd (%s)", utils.DaysToExpiry(expiry, now), expiry.Format("2006-01-02"))
}

// ParseExpiry accepts YYYY-MM-DD or the "5d (2026-10-23)" label form.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "("); i >= 0 {
		s = strings.Trim(s[i:], "()")
	}
	return time.Parse("2006-01-02", s)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
