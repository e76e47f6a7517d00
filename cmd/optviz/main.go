// Command optviz evaluates single-leg option positions from the terminal or over HTTP.
package main

import (
	"fmt"
	"os"

	"options-visualizer/internal/cli"
	"options-visualizer/internal/config"
	"options-visualizer/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("OPTVIZ_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.Log)

	if err := cli.NewRootCmd(cfg, logger).Execute(); err != nil {
		logger.Debug().Err(err).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorMessage(err))
		os.Exit(1)
	}
}
