package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

func (s *Store) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.conn(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, wrap(err, "list inventory")
	}
	return items, nil
}

// ListLowStock returns items at or below their reorder threshold.
func (s *Store) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.conn(ctx).Where("quantity <= min_quantity").Order("name").Find(&items).Error; err != nil {
		return nil, wrap(err, "list low stock")
	}
	return items, nil
}

func (s *Store) GetInventoryItem(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := s.conn(ctx).First(&it, id).Error; err != nil {
		return nil, wrap(err, "get inventory item")
	}
	return &it, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, it *models.InventoryItem) error {
	return wrap(s.conn(ctx).Create(it).Error, "create inventory item")
}

func (s *Store) SaveInventoryItem(ctx context.Context, it *models.InventoryItem) error {
	return wrap(s.conn(ctx).Save(it).Error, "save inventory item")
}

// DeleteInventoryItem removes the item, its recipe lines and its history.
func (s *Store) DeleteInventoryItem(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inventory_id = ?", id).Delete(&models.ProductIngredient{}).Error; err != nil {
			return wrap(err, "delete ingredients")
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&models.InventoryTransaction{}).Error; err != nil {
			return wrap(err, "delete transactions")
		}
		return notFoundIfNone(tx.Delete(&models.InventoryItem{}, id), "delete inventory item")
	})
}

// ApplyStockDelta changes the stock level by delta, records the movement and
// returns the updated item. Stock may go negative.
func (s *Store) ApplyStockDelta(ctx context.Context, id uint, delta float64, txn models.InventoryTransaction) (*models.InventoryItem, error) {
	res := s.conn(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if err := notFoundIfNone(res, "apply stock delta"); err != nil {
		return nil, err
	}
	it, err := s.GetInventoryItem(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.ID = 0
	txn.InventoryID = id
	txn.Quantity = delta
	txn.BalanceAfter = it.Quantity
	if err := s.conn(ctx).Create(&txn).Error; err != nil {
		return nil, wrap(err, "record inventory transaction")
	}
	return it, nil
}

// ListInventoryTransactions returns the newest movements of an item first.
func (s *Store) ListInventoryTransactions(ctx context.Context, inventoryID uint, limit int) ([]models.InventoryTransaction, error) {
	var txns []models.InventoryTransaction
	q := s.conn(ctx).Where("inventory_id = ?", inventoryID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txns).Error; err != nil {
		return nil, wrap(err, "list inventory transactions")
	}
	return txns, nil
}
