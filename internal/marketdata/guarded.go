package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"options-visualizer/internal/models"
	"options-visualizer/internal/resilience"
)

// GuardedProvider stops calling a failing provider for a cooldown period.
// Only transient failures count against the breaker; an unknown ticker does not.
type GuardedProvider struct {
	inner   Provider
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
}

// NewGuardedProvider wraps inner with a circuit breaker.
func NewGuardedProvider(inner Provider, cfg resilience.CircuitBreakerConfig, logger zerolog.Logger) *GuardedProvider {
	cb := resilience.NewCircuitBreaker("market_data", cfg)
	cb.Counts = isTransient
	return &GuardedProvider{inner: inner, breaker: cb, logger: logger}
}

// Breaker exposes the underlying circuit breaker.
func (g *GuardedProvider) Breaker() *resilience.CircuitBreaker {
	return g.breaker
}

func (g *GuardedProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return guard(ctx, g, func(ctx context.Context) (*models.Quote, error) {
		return g.inner.GetQuote(ctx, symbol)
	})
}

func (g *GuardedProvider) GetExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	return guard(ctx, g, func(ctx context.Context) ([]time.Time, error) {
		return g.inner.GetExpirations(ctx, symbol)
	})
}

func (g *GuardedProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	return guard(ctx, g, func(ctx context.Context) (*models.OptionChain, error) {
		return g.inner.GetOptionChain(ctx, symbol, expiry)
	})
}

func guard[T any](ctx context.Context, g *GuardedProvider, fn func(context.Context) (T, error)) (T, error) {
	before := g.breaker.State()
	v, err := resilience.ExecuteWithResult(ctx, g.breaker, fn)
	if after := g.breaker.State(); after != before {
		g.logger.Warn().
			Str("from", string(before)).
			Str("to", string(after)).
			Msg("Market data circuit changed state")
	}
	return v, err
}
