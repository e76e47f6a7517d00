package utils

import (
	"time"
)

// MarketStatus describes the US equity options session.
type MarketStatus string

const (
	MarketOpen      MarketStatus = "OPEN"
	MarketPreMarket MarketStatus = "PRE_MARKET"
	MarketClosed    MarketStatus = "CLOSED"
)

// NewYork is the timezone US option sessions are quoted in.
var NewYork *time.Location

func init() {
	var err error
	NewYork, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to EST without DST
		NewYork = time.FixedZone("EST", -5*60*60)
	}
}

// GetMarketStatus returns the session status at t.
// Exchange holidays are not modelled.
func GetMarketStatus(t time.Time) MarketStatus {
	now := t.In(NewYork)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return MarketClosed
	}

	minutes := now.Hour()*60 + now.Minute()

	// Pre-market: 4:00 - 9:30
	if minutes >= 240 && minutes < 570 {
		return MarketPreMarket
	}

	// Regular session: 9:30 - 16:00
	if minutes >= 570 && minutes < 960 {
		return MarketOpen
	}

	return MarketClosed
}

// IsMarketOpen reports whether the regular session is running at t.
func IsMarketOpen(t time.Time) bool {
	return GetMarketStatus(t) == MarketOpen
}

// DaysToExpiry returns whole days from now until expiry, truncating like a calendar difference.
func DaysToExpiry(expiry, now time.Time) int {
	return int(expiry.Sub(now).Hours() / 24)
}
