package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/resilience"
)

const yahooFixture = `{"optionChain":{"result":[{
  "underlyingSymbol":"AAPL",
  "expirationDates":[1792800000,1792195200],
  "strikes":[180,185,190],
  "quote":{"symbol":"AAPL","shortName":"Apple Inc.","currency":"USD","regularMarketPrice":186.5,
           "regularMarketPreviousClose":185.0,"regularMarketChange":1.5,"regularMarketChangePercent":0.81,
           "regularMarketTime":1792100000},
  "options":[{"expirationDate":1792195200,
    "calls":[{"contractSymbol":"AAPL261023C00185000","strike":185,"lastPrice":4.1,"bid":4.0,"ask":4.2,"volume":120,"openInterest":900,"impliedVolatility":0.25},
             {"contractSymbol":"AAPL261023C00190000","strike":190,"lastPrice":2.0,"theta":-0.08}],
    "puts":[{"contractSymbol":"AAPL261023P00180000","strike":180,"lastPrice":1.2},
            {"contractSymbol":"AAPL261023P00185000","strike":185,"lastPrice":2.9}]}]
}],"error":null}}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *YahooProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYahooProvider(YahooConfig{
		BaseURL:           srv.URL,
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
		MaxRetries:        3,
	}, zerolog.Nop())
}

func TestYahooProvider_QuoteAndExpirations(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v7/finance/options/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(yahooFixture))
	})
	ctx := context.Background()

	q, err := y.GetQuote(ctx, " aapl ")
	if err != nil {
		t.Fatalf("GetQuote() error: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price != 186.5 || q.Currency != "USD" {
		t.Errorf("quote = %+v", q)
	}

	exps, err := y.GetExpirations(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetExpirations() error: %v", err)
	}
	if len(exps) != 2 || !exps[0].Before(exps[1]) {
		t.Errorf("expirations not sorted: %v", exps)
	}
}

func TestYahooProvider_OptionChain(t *testing.T) {
	var gotDate string
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		w.Write([]byte(yahooFixture))
	})

	expiry := time.Unix(1792195200, 0).UTC()
	chain, err := y.GetOptionChain(context.Background(), "AAPL", expiry)
	if err != nil {
		t.Fatalf("GetOptionChain() error: %v", err)
	}
	if gotDate != "1792195200" {
		t.Errorf("date query = %q", gotDate)
	}
	if chain.SpotPrice != 186.5 || !chain.Expiry.Equal(expiry) {
		t.Errorf("chain header = %+v", chain)
	}

	want := []float64{180, 185, 190}
	var strikes []float64
	for _, s := range chain.Strikes {
		strikes = append(strikes, s.Strike)
	}
	if !reflect.DeepEqual(strikes, want) {
		t.Errorf("strikes = %v, want %v", strikes, want)
	}
	if !reflect.DeepEqual(chain.CallStrikes(), []float64{185, 190}) {
		t.Errorf("call strikes = %v", chain.CallStrikes())
	}

	row, ok := chain.Lookup(185)
	if !ok || row.Call == nil || row.Put == nil || row.Call.LastPrice != 4.1 || row.Put.LastPrice != 2.9 {
		t.Errorf("row 185 = %+v", row)
	}
	row, _ = chain.Lookup(190)
	if row.Call.Theta == nil || *row.Call.Theta != -0.08 {
		t.Errorf("expected theta on 190 call")
	}
}

func TestYahooProvider_RetriesServerErrors(t *testing.T) {
	var calls int32
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(yahooFixture))
	})
	y.retry.InitialDelay = time.Millisecond

	if _, err := y.GetQuote(context.Background(), "AAPL"); err != nil {
		t.Fatalf("GetQuote() error after retries: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestYahooProvider_UnknownSymbol(t *testing.T) {
	var calls int32
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"optionChain":{"result":[],"error":null}}`))
	})

	_, err := y.GetQuote(context.Background(), "NOPE")
	if !errors.Is(err, errors.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
	if !errors.IsDataFailure(err) {
		t.Errorf("unknown symbol should count as a data failure")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("unknown symbol should not be retried, calls = %d", calls)
	}
}

func TestYahooProvider_NoExpirations(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"optionChain":{"result":[{"quote":{"regularMarketPrice":10},"expirationDates":[]}],"error":null}}`))
	})

	_, err := y.GetExpirations(context.Background(), "XYZ")
	if !errors.Is(err, errors.ErrNoExpirations) {
		t.Errorf("expected ErrNoExpirations, got %v", err)
	}
}

func TestGuardedProvider_OpensOnOutage(t *testing.T) {
	var calls int32
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path == "/v7/finance/options/NOPE" {
			w.Write([]byte(`{"optionChain":{"result":[],"error":null}}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	y.retry.MaxAttempts = 1
	g := NewGuardedProvider(y, resilience.CircuitBreakerConfig{FailureThreshold: 2, Cooldown: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := g.GetQuote(ctx, "NOPE"); !errors.Is(err, errors.ErrSymbolNotFound) {
			t.Fatalf("expected ErrSymbolNotFound, got %v", err)
		}
	}
	if g.Breaker().State() != resilience.CircuitClosed {
		t.Fatalf("unknown tickers should not open the circuit")
	}

	for i := 0; i < 2; i++ {
		if _, err := g.GetQuote(ctx, "AAPL"); !errors.Is(err, errors.ErrDataUnavailable) {
			t.Fatalf("expected ErrDataUnavailable, got %v", err)
		}
	}
	before := atomic.LoadInt32(&calls)

	_, err := g.GetExpirations(ctx, "AAPL")
	if !errors.Is(err, errors.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if atomic.LoadInt32(&calls) != before {
		t.Errorf("open circuit should not reach the provider")
	}
}

func TestGuardedProvider_PricelessTickerKeepsCircuitClosed(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v7/finance/options/ZZZ" {
			w.Write([]byte(`{"optionChain":{"result":[{"underlyingSymbol":"ZZZ","quote":{"symbol":"ZZZ"}}],"error":null}}`))
			return
		}
		w.Write([]byte(yahooFixture))
	})
	g := NewGuardedProvider(y, resilience.CircuitBreakerConfig{FailureThreshold: 3, Cooldown: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := g.GetQuote(ctx, "ZZZ")
		if !errors.Is(err, errors.ErrSymbolNotFound) || !errors.IsDataFailure(err) {
			t.Fatalf("priceless quote: expected ErrSymbolNotFound, got %v", err)
		}
	}
	if g.Breaker().State() != resilience.CircuitClosed {
		t.Fatalf("state = %s, want CLOSED", g.Breaker().State())
	}
	if q, err := g.GetQuote(ctx, "AAPL"); err != nil || q.Price != 186.5 {
		t.Errorf("GetQuote(AAPL) = %+v, %v", q, err)
	}
}

func TestStaticProvider(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	p := DemoProvider(now)
	ctx := context.Background()

	q, err := p.GetQuote(ctx, "demo")
	if err != nil || q.Price != 100 {
		t.Fatalf("quote = %+v, %v", q, err)
	}

	exps, err := p.GetExpirations(ctx, "DEMO")
	if err != nil || len(exps) != 2 {
		t.Fatalf("expirations = %v, %v", exps, err)
	}

	chain, err := p.GetOptionChain(ctx, "DEMO", exps[0])
	if err != nil {
		t.Fatalf("chain error: %v", err)
	}
	row, ok := chain.Lookup(95)
	if !ok || row.Call.LastPrice != 6.5 || row.Put.LastPrice != 1.5 {
		t.Errorf("row 95 = %+v / %+v", row.Call, row.Put)
	}

	if _, err := p.GetOptionChain(ctx, "DEMO", now.AddDate(1, 0, 0)); !errors.Is(err, errors.ErrExpiryNotFound) {
		t.Errorf("expected ErrExpiryNotFound, got %v", err)
	}
	if _, err := p.GetQuote(ctx, "NOPE"); !errors.Is(err, errors.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestStrikeWindow(t *testing.T) {
	var strikes []float64
	for k := 10.0; k <= 300; k += 5 {
		strikes = append(strikes, k)
	}

	got := StrikeWindow(strikes, 150, 20)
	if len(got) != 40 {
		t.Fatalf("len = %d, want 40", len(got))
	}
	if got[0] != 50 || got[19] != 145 || got[20] != 155 || got[39] != 250 {
		t.Errorf("window edges = %v .. %v", got[:2], got[38:])
	}
	for _, k := range got {
		if k == 150 {
			t.Errorf("strike equal to spot must be excluded")
		}
	}

	small := StrikeWindow([]float64{120, 90, 100, 100, 80}, 95, 1)
	if !reflect.DeepEqual(small, []float64{90, 100}) {
		t.Errorf("small window = %v", small)
	}

	if got := StrikeWindow(nil, 100, 20); len(got) != 0 {
		t.Errorf("empty input should give empty window, got %v", got)
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, ok := range []string{"AAPL", "^SPX", "BRK-B", "BF.B", "ES=F", "M&M"} {
		if err := ValidateSymbol(ok); err != nil {
			t.Errorf("ValidateSymbol(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "AAPL/../X", "A B", "AAPL?date=1", "-X", "ABCDEFGHIJKLMNOPQRSTU"} {
		if err := ValidateSymbol(bad); !errors.Is(err, errors.ErrInputValidation) {
			t.Errorf("ValidateSymbol(%q) = %v, want validation error", bad, err)
		}
	}
}

func TestParseExpiry(t *testing.T) {
	want := time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-10-23", "5d (2026-10-23)"} {
		got, err := ParseExpiry(in)
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseExpiry(%q) = %v, %v", in, got, err)
		}
	}
	if label := ExpiryLabel(want, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)); label != "5d (2026-10-23)" {
		t.Errorf("label = %q", label)
	}
}
