package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geowerk/plzatlas/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "plzatlas",
	Short: "Postal-code map fusion pipeline",
	Long:  "Fuses a charging-station registry, postal-code boundary geometries, and resident counts into filterable map layers, with a per-postal-code rating ledger.",
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
