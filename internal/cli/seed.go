package cli

import (
	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/seed"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

var seedDemo bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and default settings",
	Long:  "Applies pending migrations, then creates the admin account when there are no users. With --demo a sample menu is added to an empty catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg, err := loadConfig(true)
		exitOnError(err)

		db, err := connectDB(ctx, cfg)
		exitOnError(err)
		defer database.Close(db)

		_, err = migrations.Apply(ctx, db, cfg.MigrationTable)
		exitOnError(err)

		res, err := seed.Run(ctx, store.New(db), seed.SeedConfig{
			AdminUsername: cfg.Admin.Username,
			AdminPassword: cfg.Admin.Password,
			DemoMenu:      seedDemo,
		})
		exitOnError(err)

		if res.AdminCreated {
			utils.PrintSuccess("Created admin account %q", cfg.Admin.Username)
		} else {
			utils.PrintInfo("Users already exist, admin account left alone")
		}
		if res.Products > 0 {
			utils.PrintSuccess("Added demo menu: %d categories, %d products, %d options, %d inventory items",
				res.Categories, res.Products, res.Options, res.Inventory)
		}
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "add a sample menu when the catalog is empty")
	rootCmd.AddCommand(seedCmd)
}
