package pos

import (
	"context"

	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

const topProductsLimit = 10

type SalesReport struct {
	From        string               `json:"from"`
	To          string               `json:"to"`
	Totals      *store.SalesTotals   `json:"totals"`
	TopProducts []store.ProductSales `json:"top_products"`
}

// SalesReport summarises orders completed between two shop-local dates,
// both inclusive. Empty dates mean today.
func (s *Service) SalesReport(ctx context.Context, from, to string) (*SalesReport, error) {
	if from == "" {
		from = s.Today()
	}
	if to == "" {
		to = from
	}
	start, _, err := s.DayRange(from)
	if err != nil {
		return nil, err
	}
	_, end, err := s.DayRange(to)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, invalid("from must not be after to")
	}

	totals, err := s.store.SalesTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	top, err := s.store.TopProducts(ctx, start, end, topProductsLimit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []store.ProductSales{}
	}
	return &SalesReport{From: from, To: to, Totals: totals, TopProducts: top}, nil
}
