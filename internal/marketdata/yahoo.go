package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/logging"
	"options-visualizer/internal/models"
	"options-visualizer/pkg/utils"
)

// YahooConfig holds configuration for the Yahoo Finance options endpoint.
type YahooConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	UserAgent         string
}

// YahooProvider implements Provider against /v7/finance/options.
type YahooProvider struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	retry     utils.RetryConfig
	logger    zerolog.Logger
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(cfg YahooConfig, logger zerolog.Logger) *YahooProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	retry := utils.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	retry.Retryable = isTransient

	return &YahooProvider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		retry:     retry,
		logger:    logger,
	}
}

func isTransient(err error) bool {
	return errors.Is(err, errors.ErrConnectionFailed) ||
		errors.Is(err, errors.ErrRateLimited) ||
		errors.Is(err, errors.ErrDataUnavailable)
}

type yahooEnvelope struct {
	OptionChain struct {
		Result []yahooResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

type yahooResult struct {
	UnderlyingSymbol string       `json:"underlyingSymbol"`
	ExpirationDates  []int64      `json:"expirationDates"`
	Strikes          []float64    `json:"strikes"`
	Quote            yahooQuote   `json:"quote"`
	Options          []yahooChain `json:"options"`
}

type yahooQuote struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	Currency                   string  `json:"currency"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	RegularMarketTime          int64   `json:"regularMarketTime"`
}

type yahooChain struct {
	ExpirationDate int64           `json:"expirationDate"`
	Calls          []yahooContract `json:"calls"`
	Puts           []yahooContract `json:"puts"`
}

type yahooContract struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            float64  `json:"strike"`
	LastPrice         float64  `json:"lastPrice"`
	Bid               float64  `json:"bid"`
	Ask               float64  `json:"ask"`
	Volume            int64    `json:"volume"`
	OpenInterest      int64    `json:"openInterest"`
	ImpliedVolatility float64  `json:"impliedVolatility"`
	Theta             *float64 `json:"theta"`
}

func (c yahooContract) toOptionData() *models.OptionData {
	return &models.OptionData{
		ContractSymbol: c.ContractSymbol,
		LastPrice:      c.LastPrice,
		Bid:            c.Bid,
		Ask:            c.Ask,
		Volume:         c.Volume,
		OpenInterest:   c.OpenInterest,
		IV:             c.ImpliedVolatility,
		Theta:          c.Theta,
	}
}

// GetQuote returns the regular-market price of the underlying.
func (y *YahooProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = NormalizeSymbol(symbol)
	res, err := y.fetch(ctx, symbol, time.Time{})
	if err != nil {
		return nil, err
	}
	if res.Quote.RegularMarketPrice <= 0 {
		return nil, errors.NewDataError("quote", symbol, "no market price", errors.ErrSymbolNotFound)
	}
	return &models.Quote{
		Symbol:        symbol,
		Name:          res.Quote.ShortName,
		Currency:      res.Quote.Currency,
		Price:         res.Quote.RegularMarketPrice,
		PreviousClose: res.Quote.RegularMarketPreviousClose,
		Change:        res.Quote.RegularMarketChange,
		ChangePercent: res.Quote.RegularMarketChangePercent,
		Timestamp:     time.Unix(res.Quote.RegularMarketTime, 0).UTC(),
	}, nil
}

// GetExpirations lists the expiration dates published for the underlying.
func (y *YahooProvider) GetExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	symbol = NormalizeSymbol(symbol)
	res, err := y.fetch(ctx, symbol, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(res.ExpirationDates) == 0 {
		return nil, errors.NewDataError("expirations", symbol, "no listed options", errors.ErrNoExpirations)
	}

	expirations := make([]time.Time, len(res.ExpirationDates))
	for i, ts := range res.ExpirationDates {
		expirations[i] = time.Unix(ts, 0).UTC()
	}
	sort.Slice(expirations, func(i, j int) bool { return expirations[i].Before(expirations[j]) })
	return expirations, nil
}

// GetOptionChain fetches the calls and puts for one expiration, merged by strike.
func (y *YahooProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	symbol = NormalizeSymbol(symbol)
	res, err := y.fetch(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}
	if len(res.Options) == 0 {
		return nil, errors.NewDataError("option_chain", symbol, "no chain for "+expiry.Format("2006-01-02"), errors.ErrExpiryNotFound)
	}

	raw := res.Options[0]
	strikeMap := make(map[float64]*models.OptionStrike)
	row := func(strike float64) *models.OptionStrike {
		s, ok := strikeMap[strike]
		if !ok {
			s = &models.OptionStrike{Strike: strike}
			strikeMap[strike] = s
		}
		return s
	}
	for _, c := range raw.Calls {
		row(c.Strike).Call = c.toOptionData()
	}
	for _, p := range raw.Puts {
		row(p.Strike).Put = p.toOptionData()
	}

	strikes := make([]models.OptionStrike, 0, len(strikeMap))
	for _, s := range strikeMap {
		strikes = append(strikes, *s)
	}
	sort.Slice(strikes, func(i, j int) bool { return strikes[i].Strike < strikes[j].Strike })

	chainExpiry := expiry
	if raw.ExpirationDate != 0 {
		chainExpiry = time.Unix(raw.ExpirationDate, 0).UTC()
	}

	return &models.OptionChain{
		Symbol:    symbol,
		SpotPrice: res.Quote.RegularMarketPrice,
		Expiry:    chainExpiry,
		Strikes:   strikes,
	}, nil
}

// fetch calls the options endpoint, throttled and retried on transient failures.
func (y *YahooProvider) fetch(ctx context.Context, symbol string, expiry time.Time) (*yahooResult, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", y.baseURL, url.PathEscape(symbol))
	if !expiry.IsZero() {
		endpoint += "?date=" + strconv.FormatInt(expiry.Unix(), 10)
	}

	return utils.RetryWithResult(ctx, y.retry, func() (*yahooResult, error) {
		start := time.Now()
		res, err := y.do(ctx, symbol, endpoint)
		logging.LogAPICall(y.logger, http.MethodGet, endpoint, time.Since(start), err)
		return res, err
	})
}

func (y *YahooProvider) do(ctx context.Context, symbol, endpoint string) (*yahooResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if y.userAgent != "" {
		req.Header.Set("User-Agent", y.userAgent)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewProviderError("transport", "request failed", fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewProviderError("read", "reading response", fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewDataError("option_chain", symbol, "unknown ticker", errors.ErrSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.NewProviderError(strconv.Itoa(resp.StatusCode), "throttled by provider", errors.ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, errors.NewProviderError(strconv.Itoa(resp.StatusCode), string(body), errors.ErrDataUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.NewProviderError(strconv.Itoa(resp.StatusCode), string(body), nil)
	}

	var env yahooEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.NewProviderError("decode", "parsing response", err)
	}
	if e := env.OptionChain.Error; e != nil {
		return nil, errors.NewProviderError(e.Code, e.Description, nil)
	}
	if len(env.OptionChain.Result) == 0 {
		return nil, errors.NewDataError("option_chain", symbol, "empty result", errors.ErrSymbolNotFound)
	}

	return &env.OptionChain.Result[0], nil
}
