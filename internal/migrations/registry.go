// Package migrations holds the versioned schema of the POS database. Each
// migration registers itself from init, the same way generated migration
// files do.
package migrations

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/runner"
	"github.com/project-sy789/coffeeorder-sub000/internal/versioner"
)

var registry = runner.NewRegistry()

func register(m runner.Migration) {
	registry.RegisterMigration(m)
}

// Registry returns the registry holding every schema migration.
func Registry() *runner.Registry {
	return registry
}

// NewRunner wires a runner over db with the version table named table.
// The version table is created if needed.
func NewRunner(ctx context.Context, db *gorm.DB, table string) (*runner.Runner, *versioner.Versioner, error) {
	ver := versioner.NewVersioner(db, table)
	if err := ver.Initialize(ctx); err != nil {
		return nil, nil, err
	}
	return runner.NewRunner(db, registry, ver), ver, nil
}

// Apply brings db up to the latest schema and returns how many migrations ran.
func Apply(ctx context.Context, db *gorm.DB, table string) (int, error) {
	run, _, err := NewRunner(ctx, db, table)
	if err != nil {
		return 0, err
	}
	applied, err := run.Migrate(ctx)
	if err != nil {
		return len(applied), fmt.Errorf("migrate: %w", err)
	}
	return len(applied), nil
}
