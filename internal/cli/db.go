package cli

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/config"
	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

// loadConfig reads the config file and environment. Commands that manage an
// existing database pass requireFile so a missing file is reported the way
// `init` expects, unless the database comes from the environment.
func loadConfig(requireFile bool) (*config.Config, error) {
	if requireFile && !utils.FileExists(configPath) && os.Getenv("COFFEEORDER_DATABASE_URL") == "" {
		return nil, fmt.Errorf("%s not found. Run 'coffeeorder init' first", configPath)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// connectDB opens the configured database. Command output goes to the
// terminal, so only errors are logged.
func connectDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(ctx, cfg, logger.New("coffeeorder-cli", "error"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.IsMemory() {
		utils.PrintWarning("using the in-memory database; nothing is kept after this command exits")
	}
	return db, nil
}

// exitOnError prints err and exits 1.
func exitOnError(err error) {
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
}
