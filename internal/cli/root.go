package cli

import (
	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "coffeeorder",
	Short:        "Coffee shop point-of-sale backend",
	Long:         "coffeeorder serves the POS REST API and real-time order feed, and manages its database schema",
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the config file")
}
