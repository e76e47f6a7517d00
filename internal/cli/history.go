package cli

import (
	"github.com/spf13/cobra"

	"options-visualizer/internal/errors"
	"options-visualizer/internal/store"
	"options-visualizer/internal/strategy"
	"options-visualizer/pkg/utils"
)

// addHistoryCommands adds evaluation history commands.
func addHistoryCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past evaluations",
		Long:  "List evaluations recorded by 'optviz analyze', newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrStoreNotAvailable
			}

			filter := store.EvaluationFilter{}
			filter.Symbol, _ = cmd.Flags().GetString("symbol")
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			if raw, _ := cmd.Flags().GetString("strategy"); raw != "" {
				v, err := strategy.ParseVariant(raw)
				if err != nil {
					return err
				}
				filter.Strategy = v
			}

			items, err := app.Store.ListEvaluations(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(items)
			}

			if len(items) == 0 {
				output.Dim("No evaluations recorded")
				return nil
			}

			table := NewTable(output, "ID", "When", "Ticker", "Strategy", "Strike", "Expiry", "Premium", "Max Profit")
			for _, e := range items {
				table.AddRow(
					shortID(e.ID),
					FormatTimestamp(e.CreatedAt),
					e.Ticker,
					e.Strategy.String(),
					FormatStrike(e.Strike),
					FormatExpiry(e.Expiry),
					utils.FormatUSD(e.Premium),
					e.MaxProfit.String(),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "only show this ticker")
	cmd.Flags().String("strategy", "", "only show this strategy")
	cmd.Flags().Int("limit", 20, "maximum number of evaluations")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one evaluation with its chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrStoreNotAvailable
			}
			summary, err := app.Store.GetEvaluation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summary)
			}
			printSummary(output, app, summary, true)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrStoreNotAvailable
			}
			if err := app.Store.DeleteEvaluation(cmd.Context(), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Deleted %s", args[0])
			return nil
		},
	})

	return cmd
}
