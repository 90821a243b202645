package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

// ListMembers returns members whose name or phone contains q, most recent visitors first.
func (s *Store) ListMembers(ctx context.Context, q string, limit int) ([]models.Member, error) {
	var members []models.Member
	db := s.conn(ctx).Order("last_visit_at DESC, id DESC")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&members).Error; err != nil {
		return nil, wrap(err, "list members")
	}
	return members, nil
}

func (s *Store) GetMember(ctx context.Context, id uint) (*models.Member, error) {
	var m models.Member
	if err := s.conn(ctx).First(&m, id).Error; err != nil {
		return nil, wrap(err, "get member")
	}
	return &m, nil
}

func (s *Store) GetMemberByPhone(ctx context.Context, phone string) (*models.Member, error) {
	var m models.Member
	if err := s.conn(ctx).Where("phone = ?", phone).First(&m).Error; err != nil {
		return nil, wrap(err, "get member by phone")
	}
	return &m, nil
}

func (s *Store) CreateMember(ctx context.Context, m *models.Member) error {
	return wrap(s.conn(ctx).Create(m).Error, "create member")
}

func (s *Store) SaveMember(ctx context.Context, m *models.Member) error {
	return wrap(s.conn(ctx).Save(m).Error, "save member")
}

// DeleteMember removes the member; past orders keep their totals but lose the link.
func (s *Store) DeleteMember(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("member_id = ?", id).Update("member_id", nil).Error; err != nil {
			return wrap(err, "detach orders")
		}
		return notFoundIfNone(tx.Delete(&models.Member{}, id), "delete member")
	})
}

// AdjustMemberPoints adds delta to the member's balance. A change that would
// make the balance negative fails with ErrConflict.
func (s *Store) AdjustMemberPoints(ctx context.Context, id uint, delta int) error {
	res := s.conn(ctx).Model(&models.Member{}).
		Where("id = ? AND points + ? >= 0", id, delta).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return wrap(res.Error, "adjust points")
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetMember(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("adjust points by %d: %w", delta, ErrConflict)
	}
	return nil
}

// RecordVisit credits a completed purchase to the member.
func (s *Store) RecordVisit(ctx context.Context, id uint, spent float64, points int, at time.Time) error {
	res := s.conn(ctx).Model(&models.Member{}).Where("id = ?", id).Updates(map[string]interface{}{
		"points":        gorm.Expr("points + ?", points),
		"total_spent":   gorm.Expr("total_spent + ?", spent),
		"visit_count":   gorm.Expr("visit_count + 1"),
		"last_visit_at": at,
	})
	return notFoundIfNone(res, "record visit")
}
