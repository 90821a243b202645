package migrations

import (
	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

type CreateCatalog struct{}

func (m CreateCatalog) Version() string { return "0001" }

func (m CreateCatalog) Name() string { return "create_settings_users_and_catalog" }

func (m CreateCatalog) Up(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Setting{},
		&models.User{},
		&models.Category{},
		&models.CustomizationOption{},
		&models.Product{},
	)
}

func (m CreateCatalog) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(
		"product_options",
		&models.Product{},
		&models.CustomizationOption{},
		&models.Category{},
		&models.User{},
		&models.Setting{},
	)
}

func init() {
	register(CreateCatalog{})
}
