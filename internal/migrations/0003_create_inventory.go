package migrations

import (
	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

type CreateInventory struct{}

func (m CreateInventory) Version() string { return "0003" }

func (m CreateInventory) Name() string { return "create_inventory_and_ingredients" }

func (m CreateInventory) Up(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.InventoryItem{},
		&models.ProductIngredient{},
		&models.InventoryTransaction{},
	)
}

func (m CreateInventory) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&models.InventoryTransaction{},
		&models.ProductIngredient{},
		&models.InventoryItem{},
	)
}

func init() {
	register(CreateInventory{})
}
