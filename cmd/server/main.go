/*
main.go - Application entry point

PURPOSE:
  Command-line front of the incentive engine. The root command loads the
  configuration and the logger; subcommands serve the HTTP API or evaluate
  documents offline.

COMMANDS:
  serve                       Start the HTTP API
  evaluate --input FILE       Evaluate an input document against layer files
  config resolve PATH         Print the effective value of one parameter
  config dump                 Print the default layer

CONFIGURATION:
  config.yaml in the working directory, overridden by INCENTIVE_* variables
  (INCENTIVE_SERVER_PORT, INCENTIVE_STORE_PATH, INCENTIVE_LOG_LEVEL, ...).

SEE ALSO:
  - internal/config/config.go: Configuration and logging
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "incentive-engine",
	Short: "Sales incentive computation engine",
	Long:  "Computes points, tiers and premiums of sell points across incentive tracks from monthly volumes and layered configuration.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
