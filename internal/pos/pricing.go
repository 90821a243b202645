package pos

import (
	"context"
	"errors"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

type ItemInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
	OptionIDs []uint `json:"option_ids"`
	Note      string `json:"note" binding:"max=500"`
}

// priceItems snapshots products and options into order items and returns the subtotal.
func priceItems(ctx context.Context, tx *store.Store, in []ItemInput) ([]models.OrderItem, float64, error) {
	if len(in) == 0 {
		return nil, 0, invalid("order has no items")
	}
	items := make([]models.OrderItem, 0, len(in))
	var subtotal float64
	for _, it := range in {
		if it.Quantity < 1 {
			return nil, 0, invalid("quantity must be at least 1")
		}
		p, err := tx.GetProduct(ctx, it.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, invalid("product %d does not exist", it.ProductID)
		}
		if err != nil {
			return nil, 0, err
		}
		if !p.Available {
			return nil, 0, invalid("%s is not available", p.Name)
		}

		offered := make(map[uint]models.CustomizationOption, len(p.Options))
		for _, o := range p.Options {
			offered[o.ID] = o
		}
		chosen := make(map[uint]bool, len(it.OptionIDs))
		selected := models.SelectedOptions{}
		var optionsTotal float64
		for _, id := range it.OptionIDs {
			if chosen[id] {
				continue
			}
			chosen[id] = true
			o, ok := offered[id]
			if !ok {
				return nil, 0, invalid("option %d is not offered for %s", id, p.Name)
			}
			if !o.Active {
				return nil, 0, invalid("option %s is no longer available", o.Name)
			}
			selected = append(selected, models.SelectedOption{ID: o.ID, Name: o.Name, GroupName: o.GroupName, PriceDelta: o.PriceDelta})
			optionsTotal += o.PriceDelta
		}

		pid := p.ID
		unit := utils.Money(p.Price + optionsTotal)
		line := utils.Money(unit * float64(it.Quantity))
		items = append(items, models.OrderItem{
			ProductID:    &pid,
			ProductName:  p.Name,
			BasePrice:    p.Price,
			Options:      selected,
			OptionsTotal: utils.Money(optionsTotal),
			UnitPrice:    unit,
			Quantity:     it.Quantity,
			LineTotal:    line,
			Note:         it.Note,
		})
		subtotal += line
	}
	return items, utils.Money(subtotal), nil
}
