// Package analysis resolves a position from live market data and runs the payoff engine on it.
package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"options-visualizer/internal/config"
	"options-visualizer/internal/errors"
	"options-visualizer/internal/logging"
	"options-visualizer/internal/marketdata"
	"options-visualizer/internal/models"
	"options-visualizer/internal/strategy"
)

// Recorder persists evaluated summaries.
type Recorder interface {
	SaveEvaluation(ctx context.Context, summary *models.StrategySummary) (string, error)
}

// Options controls the sweep and strike window.
type Options struct {
	SweepLow     float64
	SweepHigh    float64
	Step         float64
	StrikeWindow int
	// MaxPoints bounds the length of any curve, computed or caller-supplied.
	MaxPoints int
}

// DefaultMaxPoints covers a unit-step sweep of underlyings priced up to 20,000.
const DefaultMaxPoints = 20000

// DefaultOptions sweeps [0.5×spot, 1.5×spot) at unit step with 20 strikes each side.
func DefaultOptions() Options {
	return Options{SweepLow: 0.5, SweepHigh: 1.5, Step: 1, StrikeWindow: 20, MaxPoints: DefaultMaxPoints}
}

// OptionsFromConfig reads the chart and strike settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SweepLow:     cfg.Chart.SweepLow,
		SweepHigh:    cfg.Chart.SweepHigh,
		Step:         cfg.Chart.Step,
		StrikeWindow: cfg.Strikes.Window,
		MaxPoints:    cfg.Chart.MaxPoints,
	}
}

// Request selects the position to analyze. A zero Expiry means the nearest expiration.
type Request struct {
	Symbol   string
	Expiry   time.Time
	Strike   float64
	Strategy strategy.Variant
}

// Analyzer is the caller of the engine: it owns the market-data lookups.
type Analyzer struct {
	provider marketdata.Provider
	recorder Recorder
	opts     Options
	logger   zerolog.Logger
}

// New creates an Analyzer. recorder may be nil.
func New(provider marketdata.Provider, recorder Recorder, opts Options, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
	}
}

// SweepPoints is the number of points Sweep would return, as a float so that
// absurd inputs can be compared against a limit without overflowing.
func SweepPoints(spot, low, high, step float64) float64 {
	if !isFinite(spot) || spot <= 0 || !isFinite(step) || step <= 0 {
		return 0
	}
	n := math.Ceil((math.Trunc(high*spot) - math.Trunc(low*spot)) / step)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return n
}

// Sweep returns the integer-aligned spot prices in [trunc(low×spot), trunc(high×spot)) at step.
// Callers bound the size with SweepPoints first.
func Sweep(spot, low, high, step float64) []float64 {
	points := SweepPoints(spot, low, high, step)
	if points == 0 || points > math.MaxInt32 {
		return []float64{}
	}
	start := math.Trunc(low * spot)
	n := int(points)
	sweep := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		sweep = append(sweep, start+float64(i)*step)
	}
	return sweep
}

// Quote returns the latest price of symbol.
func (a *Analyzer) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return a.provider.GetQuote(ctx, marketdata.NormalizeSymbol(symbol))
}

// Expirations lists the option expirations of symbol.
func (a *Analyzer) Expirations(ctx context.Context, symbol string) ([]time.Time, error) {
	return a.provider.GetExpirations(ctx, marketdata.NormalizeSymbol(symbol))
}

// StrikeList is the windowed strike selection for one expiration.
type StrikeList struct {
	Symbol  string    `json:"symbol"`
	Spot    float64   `json:"spot"`
	Expiry  time.Time `json:"expiry"`
	Strikes []float64 `json:"strikes"`
}

// Strikes lists the call strikes around spot for expiry (nearest when zero).
func (a *Analyzer) Strikes(ctx context.Context, symbol string, expiry time.Time) (*StrikeList, error) {
	symbol = marketdata.NormalizeSymbol(symbol)
	quote, expiry, err := a.resolve(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}

	chain, err := a.provider.GetOptionChain(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}

	return &StrikeList{
		Symbol:  symbol,
		Spot:    quote.Price,
		Expiry:  expiry,
		Strikes: marketdata.StrikeWindow(chain.CallStrikes(), quote.Price, a.opts.StrikeWindow),
	}, nil
}

// Analyze resolves spot, expiry and premium for req and evaluates the position.
// A strike whose call or put leg is missing is evaluated with a zero premium.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*models.StrategySummary, error) {
	symbol := marketdata.NormalizeSymbol(req.Symbol)
	if err := validateRequest(symbol, req); err != nil {
		return nil, err
	}
	logger := logging.WithOperation(logging.WithSymbol(a.logger, symbol), "analyze")

	quote, expiry, err := a.resolve(ctx, symbol, req.Expiry)
	if err != nil {
		return nil, err
	}

	chain, err := a.provider.GetOptionChain(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}

	row, ok := chain.Lookup(req.Strike)
	if !ok {
		return nil, errors.Wrapf(errors.ErrStrikeNotFound, "%s %.2f on %s", symbol, req.Strike, expiry.Format("2006-01-02"))
	}

	legType := models.OptionCall
	if req.Strategy.IsPut() {
		legType = models.OptionPut
	}

	var premium float64
	var theta *float64
	if leg := row.Leg(legType); leg != nil {
		premium = leg.LastPrice
		theta = leg.Theta
	} else {
		logger.Warn().Float64("strike", req.Strike).Str("leg", string(legType)).Msg("Leg not listed, using zero premium")
	}

	position := strategy.Position{Variant: req.Strategy, Strike: req.Strike, Premium: premium}
	summary := models.NewStrategySummary(symbol, expiry, quote.Price, position, theta)
	sweep, err := a.sweep(quote.Price)
	if err != nil {
		return nil, err
	}
	summary.Curve = strategy.PayoffCurve(position.Variant, position.Strike, position.Premium, sweep)

	logging.LogEvaluation(logger, symbol, req.Strategy.String(), req.Strike, premium, quote.Price)
	a.record(ctx, logger, summary)

	return summary, nil
}

// Manual evaluates a position without market data, using the given spot for max profit and the sweep.
func (a *Analyzer) Manual(ctx context.Context, symbol string, p strategy.Position, spot float64, sweep []float64) (*models.StrategySummary, error) {
	if !p.Variant.Valid() {
		return nil, errors.NewValidationError("strategy", p.Variant, "unknown strategy")
	}
	if !isFinite(p.Strike) || p.Strike <= 0 {
		return nil, errors.NewValidationError("strike", p.Strike, "must be a positive number")
	}
	if !isFinite(p.Premium) {
		return nil, errors.NewValidationError("premium", p.Premium, "must be a finite number")
	}
	if !isFinite(spot) || spot <= 0 {
		return nil, errors.NewValidationError("spot", spot, "must be a positive number")
	}
	if sweep == nil {
		var err error
		if sweep, err = a.sweep(spot); err != nil {
			return nil, err
		}
	} else if err := a.checkSweep(sweep); err != nil {
		return nil, err
	}

	symbol = marketdata.NormalizeSymbol(symbol)
	summary := models.NewStrategySummary(symbol, time.Time{}, spot, p, nil)
	summary.Curve = strategy.PayoffCurve(p.Variant, p.Strike, p.Premium, sweep)

	logger := logging.WithOperation(a.logger, "manual")
	logging.LogEvaluation(logger, symbol, p.Variant.String(), p.Strike, p.Premium, spot)
	a.record(ctx, logger, summary)

	return summary, nil
}

// resolve fetches the quote and expirations concurrently and picks the expiry.
func (a *Analyzer) resolve(ctx context.Context, symbol string, want time.Time) (*models.Quote, time.Time, error) {
	var quote *models.Quote
	var expirations []time.Time

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = a.provider.GetQuote(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		expirations, err = a.provider.GetExpirations(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, time.Time{}, err
	}

	if len(expirations) == 0 {
		return nil, time.Time{}, errors.NewDataError("expirations", symbol, "no listed options", errors.ErrNoExpirations)
	}
	if want.IsZero() {
		return quote, expirations[0], nil
	}
	for _, e := range expirations {
		if marketdata.SameDay(e, want) {
			return quote, e, nil
		}
	}
	return nil, time.Time{}, errors.Wrapf(errors.ErrExpiryNotFound, "%s %s", symbol, want.Format("2006-01-02"))
}

func (a *Analyzer) record(ctx context.Context, logger zerolog.Logger, summary *models.StrategySummary) {
	if a.recorder == nil {
		return
	}
	id, err := a.recorder.SaveEvaluation(ctx, summary)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record evaluation")
		return
	}
	summary.ID = id
}

// sweep builds the configured sweep around spot, refusing one longer than MaxPoints.
func (a *Analyzer) sweep(spot float64) ([]float64, error) {
	points := SweepPoints(spot, a.opts.SweepLow, a.opts.SweepHigh, a.opts.Step)
	if a.opts.MaxPoints > 0 && points > float64(a.opts.MaxPoints) {
		return nil, errors.NewValidationError("spot", spot,
			fmt.Sprintf("sweep of %.0f points exceeds the %d point limit", points, a.opts.MaxPoints))
	}
	return Sweep(spot, a.opts.SweepLow, a.opts.SweepHigh, a.opts.Step), nil
}

func (a *Analyzer) checkSweep(sweep []float64) error {
	if a.opts.MaxPoints > 0 && len(sweep) > a.opts.MaxPoints {
		return errors.NewValidationError("sweep", len(sweep),
			fmt.Sprintf("%d points exceeds the %d point limit", len(sweep), a.opts.MaxPoints))
	}
	for _, p := range sweep {
		if !isFinite(p) {
			return errors.NewValidationError("sweep", p, "prices must be finite")
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateRequest(symbol string, req Request) error {
	if err := marketdata.ValidateSymbol(symbol); err != nil {
		return err
	}
	if !req.Strategy.Valid() {
		return errors.NewValidationError("strategy", req.Strategy, "unknown strategy")
	}
	if !isFinite(req.Strike) || req.Strike <= 0 {
		return errors.NewValidationError("strike", req.Strike, "must be a positive number")
	}
	return nil
}
