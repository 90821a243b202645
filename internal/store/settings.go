package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

const singletonID = 1

// GetSettings returns the shop settings row, creating it with defaults on first use.
func (s *Store) GetSettings(ctx context.Context) (*models.Setting, error) {
	var st models.Setting
	err := s.conn(ctx).First(&st, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = models.Setting{ID: singletonID, ShopName: "Coffee Shop", Currency: "THB", AcceptCustomerOrders: true}
		err = s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&st).Error
	}
	if err != nil {
		return nil, wrap(err, "get settings")
	}
	return &st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st *models.Setting) error {
	st.ID = singletonID
	return wrap(s.conn(ctx).Save(st).Error, "save settings")
}

// GetPointSettings returns the loyalty settings row, creating a disabled one on first use.
func (s *Store) GetPointSettings(ctx context.Context) (*models.PointSetting, error) {
	var ps models.PointSetting
	err := s.conn(ctx).First(&ps, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ps = models.PointSetting{ID: singletonID, SpendPerPoint: 25, PointsPerStep: 1}
		err = s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ps).Error
	}
	if err != nil {
		return nil, wrap(err, "get point settings")
	}
	return &ps, nil
}

func (s *Store) SavePointSettings(ctx context.Context, ps *models.PointSetting) error {
	ps.ID = singletonID
	return wrap(s.conn(ctx).Save(ps).Error, "save point settings")
}
