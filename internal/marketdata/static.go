package marketdata

import (
	"context"
	"sort"
	"sync"
	"time"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/models"
)

// StaticProvider implements Provider from in-memory chains. It backs offline
// demos and tests, and is safe for concurrent use.
type StaticProvider struct {
	quotes map[string]models.Quote
	chains map[string][]models.OptionChain

	mu sync.RWMutex
}

// NewStaticProvider creates an empty static provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		quotes: make(map[string]models.Quote),
		chains: make(map[string][]models.OptionChain),
	}
}

// SetQuote registers the spot price of an underlying.
func (s *StaticProvider) SetQuote(q models.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.Symbol = NormalizeSymbol(q.Symbol)
	s.quotes[q.Symbol] = q
}

// AddChain registers one expiration. A chain for an already-known date replaces it.
func (s *StaticProvider) AddChain(chain models.OptionChain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := NormalizeSymbol(chain.Symbol)
	chain.Symbol = symbol
	chains := s.chains[symbol]
	for i := range chains {
		if SameDay(chains[i].Expiry, chain.Expiry) {
			chains[i] = chain
			return
		}
	}
	chains = append(chains, chain)
	sort.Slice(chains, func(i, j int) bool { return chains[i].Expiry.Before(chains[j].Expiry) })
	s.chains[symbol] = chains
}

// GetQuote returns the registered quote.
func (s *StaticProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	if !ok {
		return nil, errors.NewDataError("quote", symbol, "unknown ticker", errors.ErrSymbolNotFound)
	}
	return &q, nil
}

// GetExpirations lists the registered expirations, earliest first.
func (s *StaticProvider) GetExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quotes[symbol]; !ok {
		return nil, errors.NewDataError("expirations", symbol, "unknown ticker", errors.ErrSymbolNotFound)
	}
	chains := s.chains[symbol]
	if len(chains) == 0 {
		return nil, errors.NewDataError("expirations", symbol, "no listed options", errors.ErrNoExpirations)
	}
	out := make([]time.Time, len(chains))
	for i, c := range chains {
		out[i] = c.Expiry
	}
	return out, nil
}

// GetOptionChain returns a copy of the chain for expiry.
func (s *StaticProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	if !ok {
		return nil, errors.NewDataError("option_chain", symbol, "unknown ticker", errors.ErrSymbolNotFound)
	}
	for _, c := range s.chains[symbol] {
		if SameDay(c.Expiry, expiry) {
			chain := c
			chain.SpotPrice = q.Price
			chain.Strikes = append([]models.OptionStrike(nil), c.Strikes...)
			return &chain, nil
		}
	}
	return nil, errors.NewDataError("option_chain", symbol, "no chain for "+expiry.Format("2006-01-02"), errors.ErrExpiryNotFound)
}

// DemoProvider returns a static provider with a synthetic "DEMO" underlying at 100,
// two weekly expirations and strikes every 5 from 50 to 150.
func DemoProvider(now time.Time) *StaticProvider {
	p := NewStaticProvider()
	p.SetQuote(models.Quote{Symbol: "DEMO", Name: "Demo Underlying", Currency: "USD", Price: 100, Timestamp: now})

	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for week := 1; week <= 2; week++ {
		expiry := base.AddDate(0, 0, 7*week)
		chain := models.OptionChain{Symbol: "DEMO", Expiry: expiry}
		for k := 50.0; k <= 150; k += 5 {
			callIntrinsic := max(100-k, 0)
			putIntrinsic := max(k-100, 0)
			timeValue := 1.5 * float64(week)
			theta := -0.05 * float64(week)
			chain.Strikes = append(chain.Strikes, models.OptionStrike{
				Strike: k,
				Call:   &models.OptionData{LastPrice: callIntrinsic + timeValue, Theta: &theta},
				Put:    &models.OptionData{LastPrice: putIntrinsic + timeValue, Theta: &theta},
			})
		}
		p.AddChain(chain)
	}
	return p
}
