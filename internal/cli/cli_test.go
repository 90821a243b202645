package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/project-sy789/coffeeorder-sub000/internal/config"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/runner"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

func TestWriteStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coffeeorder.yml")

	created, err := writeStarterConfig(path)
	if err != nil {
		t.Fatalf("writeStarterConfig failed: %v", err)
	}
	if !created {
		t.Fatal("expected the file to be created")
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("starter config does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("starter config is invalid: %v", err)
	}

	created, err = writeStarterConfig(path)
	if err != nil || created {
		t.Errorf("second write: created=%v err=%v, expected existing file to be kept", created, err)
	}
}

func TestLoadConfigRequiresFile(t *testing.T) {
	old := configPath
	defer func() { configPath = old }()
	t.Setenv("COFFEEORDER_DATABASE_URL", "")

	configPath = filepath.Join(t.TempDir(), "missing.yml")
	if _, err := loadConfig(true); err == nil || !strings.Contains(err.Error(), "coffeeorder init") {
		t.Errorf("expected init hint, got %v", err)
	}

	cfg, err := loadConfig(false)
	if err != nil {
		t.Fatalf("loadConfig without file failed: %v", err)
	}
	if !cfg.IsMemory() {
		t.Errorf("expected the in-memory fallback, got %q", cfg.DatabaseURL)
	}

	t.Setenv("COFFEEORDER_DATABASE_URL", "memory")
	if _, err := loadConfig(true); err != nil {
		t.Errorf("database from the environment should not need a file: %v", err)
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	err := printStatus(&buf, []runner.Status{
		{Version: "0001", Name: "create_catalog", Applied: true, AppliedAt: "2026-03-15 03:00:00"},
		{Version: "0002", Name: "create_members_and_loyalty"},
	}, "0001")
	if err != nil {
		t.Fatalf("printStatus failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"create_catalog", "pending", "2 migration(s), 1 pending, schema version 0001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	rep := &pos.SalesReport{
		From:   "2026-03-15",
		To:     "2026-03-15",
		Totals: &store.SalesTotals{Orders: 2, Subtotal: 260, Discounts: 10, Revenue: 250, PointsEarned: 10},
		TopProducts: []store.ProductSales{
			{ProductName: "Latte", Quantity: 3, Revenue: 195},
		},
	}
	if err := printReport(&buf, rep); err != nil {
		t.Fatalf("printReport failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sales 2026-03-15 to 2026-03-15", "250.00", "Latte", "195.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	rep.TopProducts = nil
	if err := printReport(&buf, rep); err != nil {
		t.Fatalf("printReport failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No products sold") {
		t.Errorf("expected empty product note:\n%s", buf.String())
	}
}
