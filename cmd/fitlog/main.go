/*
main.go - fitlog command-line entry point

PURPOSE:
  Single binary for the fitness tracker. Every subcommand loads the YAML
  config, opens the logs on the configured backend and runs one operation.

COMMANDS:
  sync      Bootstrap empty logs or bring them up to date
  serve     HTTP API with a periodic sync
  report    Colored summary of a window
  bmi       BMI for a weight, or the weight for a BMI
  project   Weight at a date, or the date a weight is reached
  query     Raw records or bins from one log

GLOBAL FLAGS:
  --config  YAML config path (default: fitlog.yaml; missing file = defaults)
  --data    Override data_dir

EXAMPLES:
  fitlog sync
  fitlog query weight --start 2023-01-01 --bin 7 --reduce mean
  fitlog project --weight 180
  fitlog serve --addr :9090

SEE ALSO:
  - config/config.go: Configuration file format
  - app/app.go: Backend and provider assembly
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tjwilli6/Fitness/app"
	"github.com/tjwilli6/Fitness/config"
)

var (
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "fitlog",
	Short: "Personal fitness log: calories, weight and runs",
	Long: `fitlog keeps append-only logs of daily calories, weigh-ins and runs,
syncs them from remote services and derives trends, projections and BMI.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "fitlog.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Override data_dir from config")
}

// Subcommands return errors so their deferred Close runs; cobra prints them.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// openApp loads the config and opens the app. The caller closes it.
func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a, err := app.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open logs: %w", err)
	}
	return a, nil
}
