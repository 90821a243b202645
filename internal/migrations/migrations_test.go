package migrations

import (
	"context"
	"testing"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
)

func TestApplyCreatesSchema(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer database.Close(db)

	n, err := Apply(ctx, db, "_coffeeorder_migrations")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if n != len(Registry().GetAllMigrations()) {
		t.Errorf("Expected every migration applied, got %d", n)
	}

	for _, table := range []string{
		"settings", "users", "categories", "customization_options", "products", "product_options",
		"members", "promotions", "point_settings", "point_redemption_rules",
		"inventory", "product_ingredients", "inventory_transactions",
		"orders", "order_items",
	} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s missing after Apply", table)
		}
	}

	n, err = Apply(ctx, db, "_coffeeorder_migrations")
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second Apply ran %d migrations", n)
	}
}

func TestRollbackDropsSchema(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer database.Close(db)

	run, ver, err := NewRunner(ctx, db, "_coffeeorder_migrations")
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if _, err := run.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	all := Registry().GetAllMigrations()
	if _, err := run.Rollback(ctx, len(all)); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	for _, table := range []string{"orders", "inventory", "members", "products", "product_options"} {
		if db.Migrator().HasTable(table) {
			t.Errorf("table %s should be dropped", table)
		}
	}
	if count, _ := ver.GetAppliedCount(ctx); count != 0 {
		t.Errorf("Expected no applied versions, got %d", count)
	}
}

func TestVersionsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Registry().GetAllMigrations() {
		if seen[m.Version()] {
			t.Errorf("duplicate version %s", m.Version())
		}
		seen[m.Version()] = true
		if m.Name() == "" {
			t.Errorf("migration %s has no name", m.Version())
		}
	}
}
