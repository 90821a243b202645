package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/runner"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show migration status",
	Long:  "Shows all applied and pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg, err := loadConfig(true)
		exitOnError(err)

		db, err := connectDB(ctx, cfg)
		exitOnError(err)
		defer database.Close(db)

		run, ver, err := migrations.NewRunner(ctx, db, cfg.MigrationTable)
		exitOnError(err)

		status, err := run.Status(ctx)
		exitOnError(err)
		latest, err := ver.GetLatestVersion(ctx)
		exitOnError(err)
		exitOnError(printStatus(os.Stdout, status, latest))
	},
}

func printStatus(w io.Writer, status []runner.Status, latest string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Version", "Name", "State", "Applied at")
	pending := 0
	for _, s := range status {
		state := "applied"
		if !s.Applied {
			state = "pending"
			pending++
		}
		if err := table.Append(s.Version, s.Name, state, s.AppliedAt); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if latest == "" {
		latest = "none"
	}
	_, err := fmt.Fprintf(w, "%d migration(s), %d pending, schema version %s\n", len(status), pending, latest)
	return err
}

func init() {
	rootCmd.AddCommand(showCmd)
}
