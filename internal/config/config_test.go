package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"options-visualizer/internal/errors"
)

func TestLoad_CreatesTemplateAndUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("expected template to be written: %v", err)
	}
	if cfg.Chart.SweepLow != 0.5 || cfg.Chart.SweepHigh != 1.5 {
		t.Errorf("sweep = [%v, %v), want [0.5, 1.5)", cfg.Chart.SweepLow, cfg.Chart.SweepHigh)
	}
	if cfg.MarketData.Provider != "yahoo" {
		t.Errorf("provider = %q, want yahoo", cfg.MarketData.Provider)
	}
	if cfg.Chart.MaxPoints != 20000 {
		t.Errorf("max points = %d, want 20000", cfg.Chart.MaxPoints)
	}
	if cfg.Strikes.Window != 20 {
		t.Errorf("window = %d, want 20", cfg.Strikes.Window)
	}
	if cfg.MarketData.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.MarketData.Timeout)
	}
	if cfg.Store.Path != filepath.Join(dir, "history.db") {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Dir != dir {
		t.Errorf("dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestLoad_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
[chart]
sweep_low = 0.8
sweep_high = 1.2
width = 40
height = 10

[strikes]
window = 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "from-env.db")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPTVIZ_DB_PATH="+dbPath+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("OPTVIZ_DB_PATH")
	t.Cleanup(func() { os.Unsetenv("OPTVIZ_DB_PATH") })
	t.Setenv("OPTVIZ_PROVIDER_URL", "http://127.0.0.1:9999")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Chart.SweepLow != 0.8 || cfg.Chart.Width != 40 {
		t.Errorf("chart = %+v", cfg.Chart)
	}
	if cfg.Strikes.Window != 5 {
		t.Errorf("window = %d, want 5", cfg.Strikes.Window)
	}
	if cfg.MarketData.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("base url = %q", cfg.MarketData.BaseURL)
	}
	if cfg.Store.Path != dbPath {
		t.Errorf("store path = %q, want %q from .env", cfg.Store.Path, dbPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty sweep", func(c *Config) { c.Chart.SweepLow = 1.5 }},
		{"zero step", func(c *Config) { c.Chart.Step = 0 }},
		{"zero window", func(c *Config) { c.Strikes.Window = 0 }},
		{"no rate", func(c *Config) { c.MarketData.RequestsPerSecond = 0 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"tiny chart", func(c *Config) { c.Chart.Height = 2 }},
		{"unknown provider", func(c *Config) { c.MarketData.Provider = "bloomberg" }},
		{"no breaker threshold", func(c *Config) { c.MarketData.BreakerThreshold = 0 }},
		{"no point limit", func(c *Config) { c.Chart.MaxPoints = 0 }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrConfigInvalid) {
				t.Errorf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}
