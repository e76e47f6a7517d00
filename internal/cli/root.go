// Package cli provides the command-line interface for the options visualizer.
package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-visualizer/internal/analysis"
	"options-visualizer/internal/config"
	"options-visualizer/internal/logging"
	"options-visualizer/internal/marketdata"
	"options-visualizer/internal/resilience"
	"options-visualizer/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-17"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider marketdata.Provider
	Store    store.EvaluationStore
}

// NewRootCmd creates the root command for the CLI.
// Dependencies are built after flag parsing so --config and --demo take effect.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "optviz",
		Short: "Options Visualizer - single-leg option payoff and risk",
		Long: `Options Visualizer evaluates one option position (long or short, call or put)
against live option-chain data.

It reports net debit or credit, maximum profit, chance of profit, estimated margin
and theta, and draws the profit/loss curve at expiration across a range of
underlying prices.

Use 'optviz analyze AAPL --strategy long-call --strike 190' to get started.
Use 'optviz --demo ...' to work offline against a synthetic DEMO underlying.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("config") {
				dir, _ := cmd.Flags().GetString("config")
				loaded, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = loaded
				app.Logger = logging.NewLoggerWithConfig(loaded.Log)
			}

			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}

			demo, _ := cmd.Flags().GetBool("demo")
			if demo {
				app.Config.MarketData.Provider = "demo"
			}

			app.init()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-visualizer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("demo", false, "use the offline DEMO provider instead of live data")

	addCoreCommands(rootCmd, app)
	addOptionsCommands(rootCmd, app)
	addHistoryCommands(rootCmd, app)
	addServeCommand(rootCmd, app)

	return rootCmd
}

// init builds the provider and opens the history store.
func (app *App) init() {
	app.Provider = newProvider(app.Config, app.Logger)
	app.Logger.Debug().Str("provider", app.Config.MarketData.Provider).Msg("Market data provider initialized")

	if app.Store != nil || !app.Config.Store.Enabled {
		return
	}
	dataStore, err := store.NewSQLiteStore(app.Config.Store.Path)
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to initialize store, history will be unavailable")
		return
	}
	app.Store = dataStore
	app.Logger.Debug().Str("path", app.Config.Store.Path).Msg("SQLite store initialized")
}

// Close releases the history store.
func (app *App) Close() error {
	if app.Store == nil {
		return nil
	}
	err := app.Store.Close()
	app.Store = nil
	return err
}

// Analyzer returns an analyzer over the configured provider. Evaluations are
// recorded only when record is set and the store is available.
func (app *App) Analyzer(record bool) *analysis.Analyzer {
	var recorder analysis.Recorder
	if record && app.Store != nil {
		recorder = app.Store
	}
	return analysis.New(app.Provider, recorder, analysis.OptionsFromConfig(app.Config), app.Logger)
}

func newProvider(cfg *config.Config, logger zerolog.Logger) marketdata.Provider {
	if cfg.MarketData.Provider == "demo" {
		return marketdata.DemoProvider(time.Now())
	}
	yahoo := marketdata.NewYahooProvider(marketdata.YahooConfig{
		BaseURL:           cfg.MarketData.BaseURL,
		Timeout:           cfg.MarketData.Timeout,
		RequestsPerSecond: cfg.MarketData.RequestsPerSecond,
		MaxRetries:        cfg.MarketData.MaxRetries,
		UserAgent:         cfg.MarketData.UserAgent,
	}, logger.With().Str("component", "yahoo").Logger())
	return marketdata.NewGuardedProvider(yahoo, resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.MarketData.BreakerThreshold,
		SuccessThreshold: 1,
		Cooldown:         cfg.MarketData.BreakerCooldown,
	}, logger.With().Str("component", "circuit").Logger())
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newStrategiesCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Options Visualizer v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir})
			} else {
				output.Println(app.Config.Dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Market Data")
	output.Printf("  Provider:        %s\n", cfg.MarketData.Provider)
	output.Printf("  Base URL:        %s\n", cfg.MarketData.BaseURL)
	output.Printf("  Timeout:         %s\n", cfg.MarketData.Timeout)
	output.Printf("  Requests/sec:    %.1f\n", cfg.MarketData.RequestsPerSecond)
	output.Printf("  Max Retries:     %d\n", cfg.MarketData.MaxRetries)
	output.Printf("  Breaker:         %d failures, %s cooldown\n", cfg.MarketData.BreakerThreshold, cfg.MarketData.BreakerCooldown)
	output.Println()

	output.Bold("Chart")
	output.Printf("  Sweep:           [%.2f×spot, %.2f×spot) step %.2f\n", cfg.Chart.SweepLow, cfg.Chart.SweepHigh, cfg.Chart.Step)
	output.Printf("  Max Points:      %d\n", cfg.Chart.MaxPoints)
	output.Printf("  Size:            %dx%d\n", cfg.Chart.Width, cfg.Chart.Height)
	output.Printf("  Padding:         %.1f\n", cfg.Chart.Padding)
	output.Printf("  Strike Window:   %d each side\n", cfg.Strikes.Window)
	output.Println()

	output.Bold("History")
	output.Printf("  Enabled:         %v\n", cfg.Store.Enabled)
	output.Printf("  Path:            %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Mode:            %s\n", cfg.Server.Mode)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Log.Level)
	output.Printf("  File:            %v\n", cfg.Log.File)

	return nil
}
