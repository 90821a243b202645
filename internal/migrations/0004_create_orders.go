package migrations

import (
	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

type CreateOrders struct{}

func (m CreateOrders) Version() string { return "0004" }

func (m CreateOrders) Name() string { return "create_orders_and_order_items" }

func (m CreateOrders) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m CreateOrders) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderItem{}, &models.Order{})
}

func init() {
	register(CreateOrders{})
}
