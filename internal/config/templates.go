package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Visualizer Configuration

[market_data]
# yahoo, or demo for the offline DEMO underlying
provider = "yahoo"
# Host serving the /v7/finance/options endpoint
base_url = "https://query2.finance.yahoo.com"
# Per-request timeout (e.g., "15s")
timeout = "15s"
# Client-side throttle
requests_per_second = 2.0
# Attempts per request, including the first
max_retries = 3
# Consecutive failures before live data is paused, and for how long
breaker_threshold = 5
breaker_cooldown = "30s"

[chart]
# Spot sweep as fractions of the current price: [low, high)
sweep_low = 0.5
sweep_high = 1.5
# Sweep step in currency units
step = 1.0
# Terminal chart size in characters
width = 72
height = 18
# Vertical padding above and below the payoff extent
padding = 10.0
# Largest curve a single evaluation may produce
max_points = 20000

[strikes]
# Number of strikes listed above and below the spot price
window = 20

[store]
# Keep a history of evaluated strategies
enabled = true
# path = "~/.config/options-visualizer/history.db"

[server]
addr = ":8080"
# gin mode: debug, release, test
mode = "release"

[log]
# debug, info, warn, error
level = "warn"
console = true
file = false
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
