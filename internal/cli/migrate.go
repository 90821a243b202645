package cli

import (
	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Long:  "Applies all schema migrations that haven't been applied yet",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg, err := loadConfig(true)
		exitOnError(err)

		db, err := connectDB(ctx, cfg)
		exitOnError(err)
		defer database.Close(db)

		run, _, err := migrations.NewRunner(ctx, db, cfg.MigrationTable)
		exitOnError(err)

		done, err := run.GetAppliedMigrations(ctx)
		exitOnError(err)
		pending, err := run.GetPendingMigrations(ctx)
		exitOnError(err)
		if len(pending) == 0 {
			utils.PrintSuccess("No pending migrations (%d applied)", len(done))
			return
		}

		utils.PrintInfo("Applying %d migration(s)...", len(pending))
		applied, err := run.Migrate(ctx)
		for _, m := range applied {
			utils.PrintInfo("  %s %s", m.Version(), m.Name())
		}
		exitOnError(err)
		utils.PrintSuccess("Applied %d migration(s)", len(applied))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
