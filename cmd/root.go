package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flashrun24/frc-season-map/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "frc-season-map",
	Short: "Season map data pipeline for FRC teams and events",
	Long:  "Fetches the season's team and event rosters, resolves their coordinates through overrides, the location archive, and live geocoding, and renders the result as GeoJSON for the season map.",
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
