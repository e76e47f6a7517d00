package strategy

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"options-visualizer/internal/errors"
)

func TestPayoffCurve_ConcreteScenario(t *testing.T) {
	sweep := []float64{90, 95, 100, 105, 110}

	tests := []struct {
		variant Variant
		want    []float64
	}{
		{LongCall, []float64{-5, -5, -5, 0, 5}},
		{ShortCall, []float64{5, 5, 5, 0, -5}},
		{LongPut, []float64{5, 0, -5, -5, -5}},
		{ShortPut, []float64{-5, 0, 5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			curve := PayoffCurve(tt.variant, 100, 5, sweep)
			if !reflect.DeepEqual(curve.Spots(), sweep) {
				t.Errorf("spots = %v, want %v", curve.Spots(), sweep)
			}
			if !reflect.DeepEqual(curve.PnLs(), tt.want) {
				t.Errorf("pnl = %v, want %v", curve.PnLs(), tt.want)
			}
		})
	}
}

func TestPayoffCurve_EmptySweep(t *testing.T) {
	for _, v := range Variants() {
		curve := PayoffCurve(v, 100, 5, nil)
		if curve == nil || len(curve) != 0 {
			t.Errorf("%s: expected empty non-nil curve, got %#v", v, curve)
		}
	}
}

func TestPayoffCurve_PreservesOrder(t *testing.T) {
	sweep := []float64{120, 80, 100, 80}
	curve := PayoffCurve(LongPut, 100, 2, sweep)
	want := []float64{-2, 18, -2, 18}
	if !reflect.DeepEqual(curve.PnLs(), want) {
		t.Errorf("pnl = %v, want %v", curve.PnLs(), want)
	}
}

func TestMaxProfitFor(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		spot    float64
		want    MaxProfit
	}{
		{"long call", LongCall, 95, Unlimited},
		{"short call", ShortCall, 95, MaxProfit{Value: 5}},
		{"long put in the money", LongPut, 90, MaxProfit{Value: 5}},
		{"long put out of the money", LongPut, 110, MaxProfit{Value: -5}},
		{"short put", ShortPut, 110, MaxProfit{Value: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxProfitFor(tt.variant, 5, 100, tt.spot)
			if got != tt.want {
				t.Errorf("MaxProfitFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimatedMargin(t *testing.T) {
	tests := []struct {
		variant Variant
		want    float64
	}{
		{LongCall, 5},
		{LongPut, 5},
		{ShortCall, 1005},
		{ShortPut, 1005},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			got := EstimatedMargin(tt.variant, 5, 100)
			if !got.Applicable {
				t.Fatalf("margin should be applicable")
			}
			if math.Abs(got.Value-tt.want) > 1e-9 {
				t.Errorf("EstimatedMargin() = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestProbabilityOfProfit(t *testing.T) {
	for _, v := range Variants() {
		if got := ProbabilityOfProfit(v); got != "50%" {
			t.Errorf("%s: got %q, want 50%%", v, got)
		}
	}
	if got := ProbabilityOfProfit(Variant(0)); got != "N/A" {
		t.Errorf("unknown variant: got %q, want N/A", got)
	}
}

func TestNetLabel(t *testing.T) {
	tests := []struct {
		variant Variant
		want    string
	}{
		{LongCall, "Net Debit: $5.25"},
		{LongPut, "Net Debit: $5.25"},
		{ShortCall, "Net Credit: $5.25"},
		{ShortPut, "Net Credit: $5.25"},
	}
	for _, tt := range tests {
		if got := NetLabel(tt.variant, 5.25).String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.variant, got, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	m := Evaluate(Position{Variant: ShortPut, Strike: 100, Premium: 5}, 102)
	if m.MaxProfit != (MaxProfit{Value: 5}) {
		t.Errorf("max profit = %+v", m.MaxProfit)
	}
	if m.ProbabilityOfProfit != "50%" {
		t.Errorf("probability = %q", m.ProbabilityOfProfit)
	}
	if m.EstimatedMargin.Value != 1005 {
		t.Errorf("margin = %v", m.EstimatedMargin.Value)
	}
	if m.NetFlow.Kind != Credit {
		t.Errorf("net flow = %+v", m.NetFlow)
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in   string
		want Variant
	}{
		{"Long Call", LongCall},
		{"long-call", LongCall},
		{"SHORT_CALL", ShortCall},
		{"longput", LongPut},
		{" Short Put ", ShortPut},
	}
	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if err != nil {
			t.Fatalf("ParseVariant(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseVariant(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	_, err := ParseVariant("iron condor")
	if !errors.Is(err, errors.ErrInputValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestVariantSlugRoundTrip(t *testing.T) {
	for _, v := range Variants() {
		got, err := ParseVariant(v.Slug())
		if err != nil || got != v {
			t.Errorf("%s: slug %q parsed to %v, %v", v, v.Slug(), got, err)
		}
	}
}

func TestMetricsJSON(t *testing.T) {
	m := Evaluate(Position{Variant: LongCall, Strike: 100, Premium: 5}, 100)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"max_profit":"Unlimited","probability_of_profit":"50%","estimated_margin":5,"net_flow":{"kind":"debit","amount":5}}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}

	var back Metrics
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != m {
		t.Errorf("decoded = %+v, want %+v", back, m)
	}
}

func TestCurveJSON(t *testing.T) {
	for _, c := range []Curve{nil, PayoffCurve(LongPut, 100, 5, nil)} {
		data, err := json.Marshal(c)
		if err != nil || string(data) != "[]" {
			t.Errorf("empty curve json = %s, %v; want []", data, err)
		}
	}

	data, err := json.Marshal(PayoffCurve(ShortCall, 100, 5, []float64{110}))
	if err != nil || string(data) != `[{"spot":110,"pnl":-5}]` {
		t.Errorf("curve json = %s, %v", data, err)
	}
}

func TestCurveBounds(t *testing.T) {
	lo, hi := Curve{}.Bounds()
	if lo != 0 || hi != 0 {
		t.Errorf("empty bounds = %v, %v", lo, hi)
	}
	lo, hi = PayoffCurve(ShortCall, 100, 5, []float64{90, 100, 110, 120}).Bounds()
	if lo != -15 || hi != 5 {
		t.Errorf("bounds = %v, %v; want -15, 5", lo, hi)
	}
}
