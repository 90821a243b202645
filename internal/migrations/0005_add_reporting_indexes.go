package migrations

import (
	"gorm.io/gorm"
)

// AddReportingIndexes backs the daily sales report and the kitchen queue.
type AddReportingIndexes struct{}

func (m AddReportingIndexes) Version() string { return "0005" }

func (m AddReportingIndexes) Name() string { return "add_index_idx_orders_status_created_at" }

func (m AddReportingIndexes) Up(db *gorm.DB) error {
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_status_created_at ON orders (status, created_at)").Error; err != nil {
		return err
	}
	return db.Exec("CREATE INDEX IF NOT EXISTS idx_order_items_product_id_order_id ON order_items (product_id, order_id)").Error
}

func (m AddReportingIndexes) Down(db *gorm.DB) error {
	if err := db.Exec("DROP INDEX IF EXISTS idx_order_items_product_id_order_id").Error; err != nil {
		return err
	}
	return db.Exec("DROP INDEX IF EXISTS idx_orders_status_created_at").Error
}

func init() {
	register(AddReportingIndexes{})
}
