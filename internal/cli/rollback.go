package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [n]",
	Short: "Rollback migrations",
	Long:  "Rolls back the last N migrations (default: 1)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				exitOnError(fmt.Errorf("invalid number: %s", args[0]))
			}
			n = v
		}

		cfg, err := loadConfig(true)
		exitOnError(err)

		db, err := connectDB(ctx, cfg)
		exitOnError(err)
		defer database.Close(db)

		run, ver, err := migrations.NewRunner(ctx, db, cfg.MigrationTable)
		exitOnError(err)

		appliedCount, err := ver.GetAppliedCount(ctx)
		exitOnError(err)
		if appliedCount == 0 {
			utils.PrintWarning("No migrations to rollback")
			return
		}
		if int64(n) > appliedCount {
			n = int(appliedCount)
		}

		utils.PrintInfo("Rolling back %d migration(s)...", n)
		rolled, err := run.Rollback(ctx, n)
		for _, m := range rolled {
			utils.PrintInfo("  %s %s", m.Version(), m.Name())
		}
		exitOnError(err)
		utils.PrintSuccess("Rolled back %d migration(s)", len(rolled))
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}
