package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

// OrderFilter narrows ListOrders. Zero values do not filter.
type OrderFilter struct {
	Statuses []string
	From     time.Time
	To       time.Time
	MemberID uint
	Limit    int
}

func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := s.conn(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).Order("created_at DESC, id DESC")
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To.UTC())
	}
	if f.MemberID != 0 {
		q = q.Where("member_id = ?", f.MemberID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, wrap(err, "list orders")
	}
	return orders, nil
}

// ListActiveOrders returns the kitchen queue, oldest first.
func (s *Store) ListActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("status IN ?", []string{models.StatusPending, models.StatusPreparing, models.StatusReady}).
		Order("created_at, id").
		Find(&orders).Error
	if err != nil {
		return nil, wrap(err, "list active orders")
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Member").
		First(&o, id).Error
	if err != nil {
		return nil, wrap(err, "get order")
	}
	return &o, nil
}

func (s *Store) GetOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	var o models.Order
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Member").
		Where("code = ?", code).
		First(&o).Error
	if err != nil {
		return nil, wrap(err, "get order by code")
	}
	return &o, nil
}

// LastOrderSequence returns the highest NNNN already used for codes starting
// with prefix, or 0 when there is none.
func (s *Store) LastOrderSequence(ctx context.Context, prefix string) (int, error) {
	var codes []string
	err := s.conn(ctx).Model(&models.Order{}).
		Where("code LIKE ?", prefix+"%").
		Order("LENGTH(code) DESC, code DESC").
		Limit(1).
		Pluck("code", &codes).Error
	if err != nil {
		return 0, wrap(err, "last order sequence")
	}
	if len(codes) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(codes[0], prefix))
	if err != nil {
		return 0, fmt.Errorf("last order sequence: malformed code %q: %w", codes[0], err)
	}
	return n, nil
}

// CreateOrder inserts the order together with its items.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return wrap(s.conn(ctx).Omit("Member").Create(o).Error, "create order")
}

// SaveOrder updates the order row only; items are immutable after creation.
func (s *Store) SaveOrder(ctx context.Context, o *models.Order) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Save(o).Error, "save order")
}
