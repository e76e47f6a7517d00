// Package config provides configuration management for the options visualizer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	MarketData MarketDataConfig  `mapstructure:"market_data"`
	Chart      ChartConfig       `mapstructure:"chart"`
	Strikes    StrikesConfig     `mapstructure:"strikes"`
	Store      StoreConfig       `mapstructure:"store"`
	Server     ServerConfig      `mapstructure:"server"`
	Log        logging.LogConfig `mapstructure:"log"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// MarketDataConfig configures the option-chain provider.
type MarketDataConfig struct {
	Provider          string        `mapstructure:"provider"` // yahoo or demo
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries"`
	UserAgent         string        `mapstructure:"user_agent"`
	BreakerThreshold  int           `mapstructure:"breaker_threshold"`
	BreakerCooldown   time.Duration `mapstructure:"breaker_cooldown"`
}

// ChartConfig configures the spot sweep and terminal chart.
type ChartConfig struct {
	SweepLow  float64 `mapstructure:"sweep_low"`  // fraction of spot
	SweepHigh float64 `mapstructure:"sweep_high"` // fraction of spot, exclusive
	Step      float64 `mapstructure:"step"`
	Width     int     `mapstructure:"width"`
	Height    int     `mapstructure:"height"`
	Padding   float64 `mapstructure:"padding"`
	MaxPoints int     `mapstructure:"max_points"` // upper bound on curve length
}

// StrikesConfig configures the strike window shown around spot.
type StrikesConfig struct {
	Window int `mapstructure:"window"`
}

// StoreConfig configures evaluation history.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServerConfig configures `optviz serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-visualizer"
	}
	return filepath.Join(home, ".config", "options-visualizer")
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	cfg := &Config{}
	v := newViper(DefaultConfigDir())
	_ = v.Unmarshal(cfg)
	cfg.Dir = DefaultConfigDir()
	return cfg
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("market_data.provider", "yahoo")
	v.SetDefault("market_data.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("market_data.timeout", "15s")
	v.SetDefault("market_data.requests_per_second", 2.0)
	v.SetDefault("market_data.max_retries", 3)
	v.SetDefault("market_data.user_agent", "Mozilla/5.0 (compatible; optviz/1.0)")
	v.SetDefault("market_data.breaker_threshold", 5)
	v.SetDefault("market_data.breaker_cooldown", "30s")

	v.SetDefault("chart.sweep_low", 0.5)
	v.SetDefault("chart.sweep_high", 1.5)
	v.SetDefault("chart.step", 1.0)
	v.SetDefault("chart.width", 72)
	v.SetDefault("chart.height", 18)
	v.SetDefault("chart.padding", 10.0)
	v.SetDefault("chart.max_points", 20000)

	v.SetDefault("strikes.window", 20)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "history.db"))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	logDefaults := logging.DefaultLogConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.console", logDefaults.Console)
	v.SetDefault("log.file", logDefaults.File)
	v.SetDefault("log.file_path", filepath.Join(configDir, "logs", "optviz.log"))
	v.SetDefault("log.max_size", logDefaults.MaxSize)
	v.SetDefault("log.max_backups", logDefaults.MaxBackups)
	v.SetDefault("log.max_age", logDefaults.MaxAge)

	v.SetEnvPrefix("OPTVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env values feed the OPTVIZ_* environment overrides below
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Dir = configDir

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides handles the short names documented in the README.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPTVIZ_PROVIDER_URL"); v != "" {
		cfg.MarketData.BaseURL = v
	}
	if v := os.Getenv("OPTVIZ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("OPTVIZ_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.MarketData.Provider {
	case "yahoo", "demo":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "market_data.provider %q (must be yahoo or demo)", c.MarketData.Provider)
	}
	if c.MarketData.BaseURL == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "market_data.base_url must be set")
	}
	if c.MarketData.RequestsPerSecond <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "market_data.requests_per_second must be positive")
	}
	if c.MarketData.MaxRetries < 1 {
		return errors.Wrap(errors.ErrConfigInvalid, "market_data.max_retries must be at least 1")
	}
	if c.MarketData.BreakerThreshold < 1 {
		return errors.Wrap(errors.ErrConfigInvalid, "market_data.breaker_threshold must be at least 1")
	}
	if c.Chart.SweepLow < 0 || c.Chart.SweepLow >= c.Chart.SweepHigh {
		return errors.Wrapf(errors.ErrConfigInvalid, "chart sweep [%.2f, %.2f) is empty", c.Chart.SweepLow, c.Chart.SweepHigh)
	}
	if c.Chart.Step <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "chart.step must be positive")
	}
	if c.Chart.MaxPoints < 1 {
		return errors.Wrap(errors.ErrConfigInvalid, "chart.max_points must be positive")
	}
	if c.Chart.Width < 10 || c.Chart.Height < 5 {
		return errors.Wrap(errors.ErrConfigInvalid, "chart must be at least 10x5")
	}
	if c.Strikes.Window <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "strikes.window must be positive")
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "store.path must be set when the store is enabled")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "server.mode %q (must be debug, release or test)", c.Server.Mode)
	}
	return nil
}
