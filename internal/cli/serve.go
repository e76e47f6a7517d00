package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"options-visualizer/internal/api"
)

func addServeCommand(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payoff engine over HTTP",
		Long: `Start the HTTP API.

Routes live under /api/v1: strategies, quote/:symbol, expirations/:symbol,
strikes/:symbol, analyze/:symbol, payoff (POST) and history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			handler := &api.Handler{
				Analyzer: app.Analyzer(true),
				Store:    app.Store,
				Logger:   app.Logger.With().Str("component", "api").Logger(),
			}
			router := api.NewRouter(app.Config.Server.Mode, handler)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			NewOutput(cmd).Info("Listening on %s", addr)
			return api.Serve(ctx, addr, router, app.Logger)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(cmd)
}
