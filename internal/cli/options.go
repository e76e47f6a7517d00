package cli

import (
	"time"

	"github.com/spf13/cobra"

	"options-visualizer/internal/analysis"
	"options-visualizer/internal/chart"
	"options-visualizer/internal/errors"
	"options-visualizer/internal/marketdata"
	"options-visualizer/internal/models"
	"options-visualizer/internal/strategy"
	"options-visualizer/pkg/utils"
)

// addOptionsCommands adds market-data and payoff commands.
func addOptionsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newExpirationsCmd(app))
	rootCmd.AddCommand(newStrikesCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newPayoffCmd(app))
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List supported strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				items := make([]map[string]string, 0, len(strategy.Variants()))
				for _, v := range strategy.Variants() {
					items = append(items, map[string]string{"name": v.String(), "slug": v.Slug()})
				}
				return output.JSON(items)
			}

			table := NewTable(output, "Strategy", "Flag", "Net", "Max Profit")
			for _, v := range strategy.Variants() {
				net := "debit"
				if v.IsShort() {
					net = "credit"
				}
				maxProfit := "premium"
				switch v {
				case strategy.LongCall:
					maxProfit = "unlimited"
				case strategy.LongPut:
					maxProfit = "intrinsic at spot - premium"
				}
				table.AddRow(v.String(), v.Slug(), net, maxProfit)
			}
			table.Render()
			return nil
		},
	}
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <ticker>",
		Short: "Show the current price of an underlying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			q, err := app.Analyzer(false).Quote(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			if output.IsJSON() {
				return output.JSON(q)
			}

			output.Bold("%s  %s", q.Symbol, utils.FormatUSD(q.Price))
			if q.Name != "" {
				output.Dim("%s", q.Name)
			}
			if q.PreviousClose > 0 {
				output.Printf("  Change:  %s (%s)\n", output.FormatPnL(q.Change), output.FormatPercent(q.ChangePercent))
			}
			output.Printf("  Market:  %s\n", output.MarketStatus(utils.GetMarketStatus(time.Now())))
			return nil
		},
	}
}

func newExpirationsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expirations <ticker>",
		Short: "List option expiration dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			exps, err := app.Analyzer(false).Expirations(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}

			now := time.Now()
			if output.IsJSON() {
				items := make([]map[string]interface{}, 0, len(exps))
				for _, e := range exps {
					items = append(items, map[string]interface{}{
						"date":           e.Format("2006-01-02"),
						"days_to_expiry": utils.DaysToExpiry(e, now),
					})
				}
				return output.JSON(items)
			}

			table := NewTable(output, "Expiry", "Days")
			for _, e := range exps {
				table.AddRow(e.Format("2006-01-02"), marketdata.ExpiryLabel(e, now))
			}
			table.Render()
			return nil
		},
	}
}

func newStrikesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strikes <ticker>",
		Short: "List strikes around the current price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			expiry, err := expiryFlag(cmd)
			if err != nil {
				return err
			}

			list, err := app.Analyzer(false).Strikes(cmd.Context(), args[0], expiry)
			if err != nil {
				return userError(err)
			}
			if output.IsJSON() {
				return output.JSON(list)
			}

			output.Bold("%s  %s", list.Symbol, utils.FormatUSD(list.Spot))
			output.Dim("Expiry %s", marketdata.ExpiryLabel(list.Expiry, time.Now()))
			output.Println()
			if len(list.Strikes) == 0 {
				output.Warning("No strikes listed")
				return nil
			}
			output.Println(FormatStrikes(list.Strikes))
			return nil
		},
	}

	cmd.Flags().String("expiry", "", "expiration date YYYY-MM-DD (default: nearest)")
	return cmd
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <ticker>",
		Short: "Evaluate a single-leg option position",
		Long: `Evaluate one long or short call or put against the live option chain.

The premium is the last traded price of the chosen contract. The chart shows
profit/loss at expiration per share from 0.5x to 1.5x the current price.`,
		Example: `  optviz analyze AAPL --strategy long-call --strike 190
  optviz analyze SPY --strategy short-put --strike 540 --expiry 2026-11-20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			variant, err := strategyFlag(cmd)
			if err != nil {
				return err
			}
			strike, _ := cmd.Flags().GetFloat64("strike")
			expiry, err := expiryFlag(cmd)
			if err != nil {
				return err
			}
			noSave, _ := cmd.Flags().GetBool("no-save")

			summary, err := app.Analyzer(!noSave).Analyze(cmd.Context(), analysis.Request{
				Symbol:   args[0],
				Expiry:   expiry,
				Strike:   strike,
				Strategy: variant,
			})
			if err != nil {
				return userError(err)
			}

			if output.IsJSON() {
				return output.JSON(summary)
			}
			noChart, _ := cmd.Flags().GetBool("no-chart")
			printSummary(output, app, summary, !noChart)
			return nil
		},
	}

	cmd.Flags().String("strategy", "", "long-call, short-call, long-put or short-put")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().String("expiry", "", "expiration date YYYY-MM-DD (default: nearest)")
	cmd.Flags().Bool("no-chart", false, "skip the payoff chart")
	cmd.Flags().Bool("no-save", false, "do not record the evaluation in history")
	cmd.MarkFlagRequired("strategy")
	cmd.MarkFlagRequired("strike")

	return cmd
}

func newPayoffCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payoff",
		Short:   "Evaluate a position from manual inputs",
		Long:    "Evaluate a position without market data, using the given premium and spot price.",
		Example: `  optviz payoff --strategy short-call --strike 100 --premium 5 --spot 100`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			variant, err := strategyFlag(cmd)
			if err != nil {
				return err
			}
			strike, _ := cmd.Flags().GetFloat64("strike")
			premium, _ := cmd.Flags().GetFloat64("premium")
			spot, _ := cmd.Flags().GetFloat64("spot")
			symbol, _ := cmd.Flags().GetString("symbol")
			save, _ := cmd.Flags().GetBool("save")

			p := strategy.Position{Variant: variant, Strike: strike, Premium: premium}
			summary, err := app.Analyzer(save).Manual(cmd.Context(), symbol, p, spot, nil)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(summary)
			}
			noChart, _ := cmd.Flags().GetBool("no-chart")
			printSummary(output, app, summary, !noChart)
			return nil
		},
	}

	cmd.Flags().String("strategy", "", "long-call, short-call, long-put or short-put")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("premium", 0, "option premium per share")
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().String("symbol", "MANUAL", "label for the position")
	cmd.Flags().Bool("no-chart", false, "skip the payoff chart")
	cmd.Flags().Bool("save", false, "record the evaluation in history")
	cmd.MarkFlagRequired("strategy")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("spot")

	return cmd
}

func printSummary(output *Output, app *App, s *models.StrategySummary, withChart bool) {
	output.Bold("%s  %s", s.Ticker, utils.FormatUSD(s.Spot))
	if s.Expiry.IsZero() {
		output.Dim("%s %s @ %s", s.Strategy, FormatStrike(s.Strike), utils.FormatUSD(s.Premium))
	} else {
		output.Dim("%s %s @ %s, expiry %s", s.Strategy, FormatStrike(s.Strike), utils.FormatUSD(s.Premium),
			marketdata.ExpiryLabel(s.Expiry, time.Now()))
	}
	output.Println()

	table := NewTable(output, summaryHeaders...)
	table.AddRow(summaryRow(s)...)
	table.Render()

	if s.ID != "" {
		output.Dim("Saved as %s", s.ID)
	}
	if !withChart {
		return
	}

	output.Println()
	output.Bold("Profit/Loss at Expiration (per share)")
	opts := chart.Options{Width: app.Config.Chart.Width, Height: app.Config.Chart.Height, Padding: app.Config.Chart.Padding}
	for _, line := range chart.Render(s.Curve, s.Strike, s.Spot, opts) {
		output.Println(line)
	}
}

func strategyFlag(cmd *cobra.Command) (strategy.Variant, error) {
	raw, _ := cmd.Flags().GetString("strategy")
	return strategy.ParseVariant(raw)
}

func expiryFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("expiry")
	if raw == "" {
		return time.Time{}, nil
	}
	expiry, err := marketdata.ParseExpiry(raw)
	if err != nil {
		return time.Time{}, errors.NewValidationError("expiry", raw, "expected YYYY-MM-DD")
	}
	return expiry, nil
}
