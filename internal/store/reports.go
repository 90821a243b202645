package store

import (
	"context"
	"time"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

// SalesTotals aggregates completed orders over a period.
type SalesTotals struct {
	Orders       int64   `json:"orders"`
	Subtotal     float64 `json:"subtotal"`
	Discounts    float64 `json:"discounts"`
	Revenue      float64 `json:"revenue"`
	PointsEarned int64   `json:"points_earned"`
}

type ProductSales struct {
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// SalesTotals sums orders completed in [from, to).
func (s *Store) SalesTotals(ctx context.Context, from, to time.Time) (*SalesTotals, error) {
	var t SalesTotals
	err := s.conn(ctx).Model(&models.Order{}).
		Select(`COUNT(*) AS orders,
			COALESCE(SUM(subtotal), 0) AS subtotal,
			COALESCE(SUM(promotion_discount + points_discount), 0) AS discounts,
			COALESCE(SUM(total), 0) AS revenue,
			COALESCE(SUM(points_earned), 0) AS points_earned`).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.StatusCompleted, from.UTC(), to.UTC()).
		Scan(&t).Error
	if err != nil {
		return nil, wrap(err, "sales totals")
	}
	return &t, nil
}

// TopProducts ranks products sold in orders completed in [from, to) by quantity.
func (s *Store) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	q := s.conn(ctx).Table("order_items").
		Select("order_items.product_name AS product_name, SUM(order_items.quantity) AS quantity, SUM(order_items.line_total) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.completed_at >= ? AND orders.completed_at < ?", models.StatusCompleted, from.UTC(), to.UTC()).
		Group("order_items.product_name").
		Order("quantity DESC, product_name")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, wrap(err, "top products")
	}
	return rows, nil
}
