package seed

import (
	"context"
	"testing"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if _, err := migrations.Apply(context.Background(), db, "_test_migrations"); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store.New(db)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t)
	pos.PasswordCost = 4
	cfg := SeedConfig{AdminUsername: "admin", AdminPassword: "admin1234", DemoMenu: true}

	res, err := Run(ctx, st, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.AdminCreated || res.Categories != 3 || res.Products != 4 || res.Options != 7 || res.Inventory != 5 {
		t.Errorf("unexpected first run %+v", res)
	}

	admin, err := st.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin missing: %v", err)
	}
	if !pos.VerifyPassword(admin.PasswordHash, "admin1234") || !admin.Active {
		t.Error("admin password not hashed correctly")
	}

	latte, err := st.ListProducts(ctx, store.ProductFilter{})
	if err != nil || len(latte) != 4 {
		t.Fatalf("ListProducts: %v %d", err, len(latte))
	}
	full, _ := st.GetProduct(ctx, latte[1].ID)
	if full.Name != "Latte" || len(full.Ingredients) != 3 || len(full.Options) != 6 {
		t.Errorf("unexpected latte %+v", full)
	}

	res, err = Run(ctx, st, cfg)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if res.AdminCreated || res.Products != 0 {
		t.Errorf("second run should create nothing, got %+v", res)
	}
}

func TestRunWithoutMenu(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t)
	pos.PasswordCost = 4

	if _, err := Run(ctx, st, SeedConfig{AdminUsername: "owner", AdminPassword: "short"}); err == nil {
		t.Error("weak admin password should be rejected")
	}
	res, err := Run(ctx, st, SeedConfig{AdminUsername: "owner", AdminPassword: "longpassword"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.AdminCreated || res.Categories != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	ps, err := st.GetPointSettings(ctx)
	if err != nil || ps.SpendPerPoint != 25 {
		t.Errorf("point settings not created: %v %+v", err, ps)
	}
}
