package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

func (s *Store) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promos []models.Promotion
	if err := s.conn(ctx).Order("id DESC").Find(&promos).Error; err != nil {
		return nil, wrap(err, "list promotions")
	}
	return promos, nil
}

// ListActivePromotions returns promotions flagged active. The validity
// window and usage limit are checked by the caller.
func (s *Store) ListActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := s.conn(ctx).Where("active = ?", true).Order("id").Find(&promos).Error
	if err != nil {
		return nil, wrap(err, "list active promotions")
	}
	return promos, nil
}

func (s *Store) GetPromotion(ctx context.Context, id uint) (*models.Promotion, error) {
	var p models.Promotion
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, wrap(err, "get promotion")
	}
	return &p, nil
}

// GetPromotionByCode matches codes case-insensitively.
func (s *Store) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var p models.Promotion
	if err := s.conn(ctx).Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).First(&p).Error; err != nil {
		return nil, wrap(err, "get promotion by code")
	}
	return &p, nil
}

func (s *Store) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	return wrap(s.conn(ctx).Create(p).Error, "create promotion")
}

func (s *Store) SavePromotion(ctx context.Context, p *models.Promotion) error {
	return wrap(s.conn(ctx).Save(p).Error, "save promotion")
}

func (s *Store) DeletePromotion(ctx context.Context, id uint) error {
	return notFoundIfNone(s.conn(ctx).Delete(&models.Promotion{}, id), "delete promotion")
}

// IncrementPromotionUsage counts one use. It fails with ErrConflict once the usage limit is reached.
func (s *Store) IncrementPromotionUsage(ctx context.Context, id uint) error {
	res := s.conn(ctx).Exec(
		"UPDATE promotions SET usage_count = usage_count + 1 WHERE id = ? AND (usage_limit = 0 OR usage_count < usage_limit)", id)
	if res.Error != nil {
		return wrap(res.Error, "increment promotion usage")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("promotion %d usage limit reached: %w", id, ErrConflict)
	}
	return nil
}

func (s *Store) ListRedemptionRules(ctx context.Context, activeOnly bool) ([]models.PointRedemptionRule, error) {
	var rules []models.PointRedemptionRule
	q := s.conn(ctx).Order("points_required")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&rules).Error; err != nil {
		return nil, wrap(err, "list redemption rules")
	}
	return rules, nil
}

func (s *Store) GetRedemptionRule(ctx context.Context, id uint) (*models.PointRedemptionRule, error) {
	var r models.PointRedemptionRule
	if err := s.conn(ctx).First(&r, id).Error; err != nil {
		return nil, wrap(err, "get redemption rule")
	}
	return &r, nil
}

func (s *Store) CreateRedemptionRule(ctx context.Context, r *models.PointRedemptionRule) error {
	return wrap(s.conn(ctx).Create(r).Error, "create redemption rule")
}

func (s *Store) SaveRedemptionRule(ctx context.Context, r *models.PointRedemptionRule) error {
	return wrap(s.conn(ctx).Save(r).Error, "save redemption rule")
}

func (s *Store) DeleteRedemptionRule(ctx context.Context, id uint) error {
	return notFoundIfNone(s.conn(ctx).Delete(&models.PointRedemptionRule{}, id), "delete redemption rule")
}
