package runner

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/versioner"
)

// Migration is one versioned schema change.
type Migration interface {
	Version() string
	Name() string
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Registry holds all registered migrations
type Registry struct {
	migrations map[string]Migration
}

func NewRegistry() *Registry {
	return &Registry{
		migrations: make(map[string]Migration),
	}
}

// RegisterMigration registers m, replacing any migration with the same version.
func (r *Registry) RegisterMigration(m Migration) {
	r.migrations[m.Version()] = m
}

func (r *Registry) GetMigration(version string) (Migration, bool) {
	m, ok := r.migrations[version]
	return m, ok
}

// GetAllMigrations returns all migrations sorted by version
func (r *Registry) GetAllMigrations() []Migration {
	var migrations []Migration
	for _, m := range r.migrations {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version() < migrations[j].Version()
	})
	return migrations
}

// Runner executes migrations. Each migration runs in its own transaction
// together with its version record, so a failed Up leaves no trace.
type Runner struct {
	db        *gorm.DB
	registry  *Registry
	versioner *versioner.Versioner
}

func NewRunner(db *gorm.DB, registry *Registry, versioner *versioner.Versioner) *Runner {
	return &Runner{
		db:        db,
		registry:  registry,
		versioner: versioner,
	}
}

// Migrate applies all pending migrations in version order and returns the ones it applied.
func (r *Runner) Migrate(ctx context.Context) ([]Migration, error) {
	pending, err := r.GetPendingMigrations(ctx)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, m := range pending {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return r.versioner.WithDB(tx).RecordApplied(ctx, m.Version(), m.Name())
		})
		if err != nil {
			return done, fmt.Errorf("failed to apply migration %s (%s): %w", m.Version(), m.Name(), err)
		}
		done = append(done, m)
	}
	return done, nil
}

// Rollback rolls back the last n applied migrations, newest first.
func (r *Runner) Rollback(ctx context.Context, n int) ([]Migration, error) {
	applied, err := r.versioner.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	if len(applied) == 0 {
		return nil, fmt.Errorf("no migrations to rollback")
	}

	if n > len(applied) {
		n = len(applied)
	}

	var done []Migration
	for i := len(applied) - 1; i >= len(applied)-n; i-- {
		version := applied[i]
		m, ok := r.registry.GetMigration(version)
		if !ok {
			return done, fmt.Errorf("migration %s not found in registry", version)
		}

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return r.versioner.WithDB(tx).RemoveApplied(ctx, version)
		})
		if err != nil {
			return done, fmt.Errorf("failed to rollback migration %s: %w", version, err)
		}
		done = append(done, m)
	}

	return done, nil
}

// GetPendingMigrations returns migrations that haven't been applied
func (r *Runner) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := r.versioner.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedMap := make(map[string]bool)
	for _, v := range applied {
		appliedMap[v] = true
	}

	var pending []Migration
	for _, m := range r.registry.GetAllMigrations() {
		if !appliedMap[m.Version()] {
			pending = append(pending, m)
		}
	}

	return pending, nil
}

// GetAppliedMigrations returns migrations that have been applied
func (r *Runner) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := r.versioner.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var migrations []Migration
	for _, v := range applied {
		if m, ok := r.registry.GetMigration(v); ok {
			migrations = append(migrations, m)
		}
	}

	return migrations, nil
}

// Status is one line of `coffeeorder show`.
type Status struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt string
}

// Status lists every known migration, applied or not. Versions recorded in the
// database but missing from the registry are reported with Name "(unknown)".
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	records, err := r.versioner.GetAppliedRecords(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(records))
	var out []Status
	for _, rec := range records {
		name := "(unknown)"
		if m, ok := r.registry.GetMigration(rec.Version); ok {
			name = m.Name()
		}
		seen[rec.Version] = true
		out = append(out, Status{Version: rec.Version, Name: name, Applied: true, AppliedAt: rec.AppliedAt.Format("2006-01-02 15:04:05")})
	}
	for _, m := range r.registry.GetAllMigrations() {
		if !seen[m.Version()] {
			out = append(out, Status{Version: m.Version(), Name: m.Name()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
