package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "gpu-prices",
	Short:        "Aggregate GPU rental prices across cloud providers",
	Long:         "Queries RunPod, Vast.ai, DigitalOcean and Hyperbolic concurrently and merges their GPU offers into one price list.",
	SilenceUsage: true,
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
