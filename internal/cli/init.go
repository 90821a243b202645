package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/config"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long:  "Creates coffeeorder.yml (or the file named by --config) with every setting at its default",
	Run: func(cmd *cobra.Command, args []string) {
		created, err := writeStarterConfig(configPath)
		exitOnError(err)
		if !created {
			utils.PrintWarning("%s already exists", configPath)
			return
		}
		utils.PrintSuccess("Initialized coffeeorder")
		utils.PrintInfo("Created %s", configPath)
		utils.PrintInfo("Edit database_url, then run 'coffeeorder migrate' and 'coffeeorder serve'")
	},
}

// writeStarterConfig reports false when path already exists.
func writeStarterConfig(path string) (bool, error) {
	if utils.FileExists(path) {
		return false, nil
	}
	data, err := config.Starter()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
