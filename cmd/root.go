package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kindness-map",
	Short: "Map of nearby food banks, shelters and charity shops",
	Long:  "Resolves a reference location, fetches kindness spots from a static document or Overpass, and serves markers and popups to the browser map widget.",
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
