package pos

import (
	"context"
	"fmt"
	"math"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

type AdjustInput struct {
	Type      string  `json:"type" binding:"required,oneof=restock waste usage adjustment"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Note      string  `json:"note" binding:"max=500"`
	CreatedBy string  `json:"created_by" binding:"max=64"`
}

// deductInventory consumes the recipe of every item in o and returns the
// items that ended at or below their threshold. Stock may go negative.
func (s *Service) deductInventory(ctx context.Context, tx *store.Store, o *models.Order) ([]models.InventoryItem, error) {
	var productIDs []uint
	for _, it := range o.Items {
		if it.ProductID != nil {
			productIDs = append(productIDs, *it.ProductID)
		}
	}
	recipes, err := tx.IngredientsFor(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	var order []uint
	usage := make(map[uint]float64)
	for _, it := range o.Items {
		if it.ProductID == nil {
			continue
		}
		for _, ing := range recipes[*it.ProductID] {
			if _, ok := usage[ing.InventoryID]; !ok {
				order = append(order, ing.InventoryID)
			}
			usage[ing.InventoryID] += ing.Quantity * float64(it.Quantity)
		}
	}

	var low []models.InventoryItem
	orderID := o.ID
	for _, invID := range order {
		item, err := tx.ApplyStockDelta(ctx, invID, -roundQty(usage[invID]), models.InventoryTransaction{
			Type:      models.TxUsage,
			OrderID:   &orderID,
			Note:      "order " + o.Code,
			CreatedBy: "system",
		})
		if err != nil {
			return nil, fmt.Errorf("deduct inventory %d for %s: %w", invID, o.Code, err)
		}
		if item.IsLow() {
			low = append(low, *item)
		}
	}
	return low, nil
}

// AdjustInventory applies a manual stock movement. restock adds, waste and
// usage subtract, adjustment applies the signed quantity as given.
func (s *Service) AdjustInventory(ctx context.Context, id uint, in AdjustInput) (*models.InventoryItem, error) {
	var delta float64
	switch in.Type {
	case models.TxRestock:
		if in.Quantity <= 0 {
			return nil, invalid("restock quantity must be positive")
		}
		delta = in.Quantity
	case models.TxWaste, models.TxUsage:
		if in.Quantity <= 0 {
			return nil, invalid("%s quantity must be positive", in.Type)
		}
		delta = -in.Quantity
	case models.TxAdjustment:
		if in.Quantity == 0 {
			return nil, invalid("adjustment quantity cannot be zero")
		}
		delta = in.Quantity
	default:
		return nil, invalid("type must be restock, waste, usage or adjustment")
	}

	var item *models.InventoryItem
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		item, err = tx.ApplyStockDelta(ctx, id, roundQty(delta), models.InventoryTransaction{
			Type:      in.Type,
			Note:      in.Note,
			CreatedBy: in.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("inventory_adjusted", map[string]any{"inventory_id": id, "type": in.Type, "delta": delta, "balance": item.Quantity})
	s.events.Publish(ctx, realtime.InventoryChanged, item)
	if item.IsLow() {
		s.events.Publish(ctx, realtime.InventoryLowStock, item)
	}
	return item, nil
}

// roundQty keeps stock quantities to three decimals (grams, millilitres).
func roundQty(v float64) float64 {
	return math.Round(v*1000) / 1000
}
