// Package seed fills an empty database with the records a shop needs to start
// trading: an admin account, the settings rows and optionally a demo menu.
package seed

import (
	"context"
	"fmt"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

type SeedConfig struct {
	AdminUsername string
	AdminPassword string
	DemoMenu      bool
}

// Result reports what a seed run created.
type Result struct {
	AdminCreated bool
	Categories   int
	Products     int
	Options      int
	Inventory    int
}

// Run is idempotent: the admin is only created when there are no users and
// the demo menu only when there are no categories.
func Run(ctx context.Context, st *store.Store, cfg SeedConfig) (*Result, error) {
	res := &Result{}
	err := st.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetSettings(ctx); err != nil {
			return err
		}
		if _, err := tx.GetPointSettings(ctx); err != nil {
			return err
		}

		n, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			admin, err := pos.NewUser(cfg.AdminUsername, cfg.AdminPassword, "Administrator", models.RoleAdmin)
			if err != nil {
				return fmt.Errorf("admin account: %w", err)
			}
			if err := tx.CreateUser(ctx, admin); err != nil {
				return err
			}
			res.AdminCreated = true
		}

		if !cfg.DemoMenu {
			return nil
		}
		cats, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		if len(cats) > 0 {
			return nil
		}
		return seedMenu(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type demoProduct struct {
	name        string
	category    string
	price       float64
	options     []string
	ingredients map[string]float64
}

var (
	demoCategories = []string{"Coffee", "Tea", "Bakery"}

	demoOptions = []models.CustomizationOption{
		{Name: "Hot", GroupName: "temperature", SortOrder: 1},
		{Name: "Iced", GroupName: "temperature", PriceDelta: 5, SortOrder: 2},
		{Name: "Whole milk", GroupName: "milk", SortOrder: 1},
		{Name: "Oat milk", GroupName: "milk", PriceDelta: 15, SortOrder: 2},
		{Name: "No sugar", GroupName: "sweetness", SortOrder: 1},
		{Name: "Less sweet", GroupName: "sweetness", SortOrder: 2},
		{Name: "Extra shot", GroupName: "topping", PriceDelta: 15, SortOrder: 1},
	}

	demoInventory = []models.InventoryItem{
		{Name: "Espresso beans", Unit: "g", Quantity: 5000, MinQuantity: 500, CostPerUnit: 0.8},
		{Name: "Milk", Unit: "ml", Quantity: 10000, MinQuantity: 2000, CostPerUnit: 0.05},
		{Name: "Thai tea leaves", Unit: "g", Quantity: 2000, MinQuantity: 300, CostPerUnit: 0.4},
		{Name: "Cups", Unit: "pcs", Quantity: 500, MinQuantity: 100, CostPerUnit: 2},
		{Name: "Croissant", Unit: "pcs", Quantity: 24, MinQuantity: 6, CostPerUnit: 18},
	}

	demoProducts = []demoProduct{
		{"Americano", "Coffee", 50, []string{"Hot", "Iced", "No sugar", "Less sweet", "Extra shot"},
			map[string]float64{"Espresso beans": 18, "Cups": 1}},
		{"Latte", "Coffee", 60, []string{"Hot", "Iced", "Whole milk", "Oat milk", "Less sweet", "Extra shot"},
			map[string]float64{"Espresso beans": 18, "Milk": 180, "Cups": 1}},
		{"Thai tea", "Tea", 55, []string{"Hot", "Iced", "Whole milk", "Oat milk", "Less sweet"},
			map[string]float64{"Thai tea leaves": 12, "Milk": 120, "Cups": 1}},
		{"Croissant", "Bakery", 45, nil, map[string]float64{"Croissant": 1}},
	}
)

func seedMenu(ctx context.Context, tx *store.Store, res *Result) error {
	catIDs := make(map[string]uint, len(demoCategories))
	for i, name := range demoCategories {
		c := &models.Category{Name: name, SortOrder: i + 1}
		if err := tx.CreateCategory(ctx, c); err != nil {
			return err
		}
		catIDs[name] = c.ID
		res.Categories++
	}

	optIDs := make(map[string]uint, len(demoOptions))
	for _, o := range demoOptions {
		o := o
		o.Active = true
		if err := tx.CreateOption(ctx, &o); err != nil {
			return err
		}
		optIDs[o.Name] = o.ID
		res.Options++
	}

	invIDs := make(map[string]uint, len(demoInventory))
	for _, it := range demoInventory {
		it := it
		if err := tx.CreateInventoryItem(ctx, &it); err != nil {
			return err
		}
		invIDs[it.Name] = it.ID
		res.Inventory++
	}

	for i, dp := range demoProducts {
		catID := catIDs[dp.category]
		p := &models.Product{Name: dp.name, Price: dp.price, CategoryID: &catID, Available: true, SortOrder: i + 1}
		var opts []uint
		for _, name := range dp.options {
			opts = append(opts, optIDs[name])
		}
		if err := tx.CreateProduct(ctx, p, opts); err != nil {
			return err
		}
		var ings []models.ProductIngredient
		for name, qty := range dp.ingredients {
			ings = append(ings, models.ProductIngredient{InventoryID: invIDs[name], Quantity: qty})
		}
		if err := tx.SetProductIngredients(ctx, p.ID, ings); err != nil {
			return err
		}
		res.Products++
	}

	return tx.CreateRedemptionRule(ctx, &models.PointRedemptionRule{Name: "Free upsize", PointsRequired: 20, DiscountAmount: 10, Active: true})
}
