package pos

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

// PromotionQuery identifies a promotion by id or code.
type PromotionQuery struct {
	PromotionID *uint   `json:"promotion_id"`
	Code        string  `json:"code"`
	Subtotal    float64 `json:"subtotal" binding:"min=0"`
}

func (q PromotionQuery) empty() bool {
	return q.PromotionID == nil && strings.TrimSpace(q.Code) == ""
}

type PromotionResult struct {
	Promotion *models.Promotion `json:"promotion"`
	Discount  float64           `json:"discount"`
	Total     float64           `json:"total"`
}

// promotionUsable checks everything except the minimum purchase.
func promotionUsable(p *models.Promotion, now time.Time) error {
	switch {
	case !p.Active:
		return fmt.Errorf("%w: %s is not active", ErrPromotionNotApplicable, p.Name)
	case p.StartsAt != nil && p.StartsAt.After(now):
		return fmt.Errorf("%w: %s has not started", ErrPromotionNotApplicable, p.Name)
	case p.EndsAt != nil && p.EndsAt.Before(now):
		return fmt.Errorf("%w: %s has ended", ErrPromotionNotApplicable, p.Name)
	case p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit:
		return fmt.Errorf("%w: %s has reached its usage limit", ErrPromotionNotApplicable, p.Name)
	}
	return nil
}

// PromotionDiscount returns the discount p gives on subtotal at time now.
func PromotionDiscount(p *models.Promotion, subtotal float64, now time.Time) (float64, error) {
	if err := promotionUsable(p, now); err != nil {
		return 0, err
	}
	if subtotal < p.MinPurchase {
		return 0, fmt.Errorf("%w: %s needs a minimum purchase of %s", ErrPromotionNotApplicable, p.Name, utils.FormatMoney(p.MinPurchase))
	}

	var discount float64
	switch p.DiscountType {
	case models.DiscountPercent:
		discount = subtotal * p.DiscountValue / 100
		if p.MaxDiscount > 0 {
			discount = math.Min(discount, p.MaxDiscount)
		}
	case models.DiscountFixed:
		discount = p.DiscountValue
	default:
		return 0, fmt.Errorf("%w: unknown discount type %q", ErrPromotionNotApplicable, p.DiscountType)
	}
	return utils.Money(math.Min(discount, subtotal)), nil
}

func findPromotion(ctx context.Context, st *store.Store, q PromotionQuery) (*models.Promotion, error) {
	var (
		p   *models.Promotion
		err error
	)
	if q.PromotionID != nil {
		p, err = st.GetPromotion(ctx, *q.PromotionID)
	} else {
		p, err = st.GetPromotionByCode(ctx, q.Code)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: promotion does not exist", ErrPromotionNotApplicable)
	}
	return p, err
}

// ValidatePromotion checks a promotion against a subtotal without using it.
func (s *Service) ValidatePromotion(ctx context.Context, q PromotionQuery) (*PromotionResult, error) {
	if q.empty() {
		return nil, invalid("code or promotion_id is required")
	}
	p, err := findPromotion(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	discount, err := PromotionDiscount(p, q.Subtotal, s.clock())
	if err != nil {
		return nil, err
	}
	return &PromotionResult{Promotion: p, Discount: discount, Total: utils.Money(q.Subtotal - discount)}, nil
}

// ActivePromotions lists the promotions usable right now.
func (s *Service) ActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	all, err := s.store.ListActivePromotions(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]models.Promotion, 0, len(all))
	for i := range all {
		if promotionUsable(&all[i], now) == nil {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// CheckPromotion validates the fields of a promotion before it is saved.
func CheckPromotion(p *models.Promotion) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name is required")
	}
	switch p.DiscountType {
	case models.DiscountPercent:
		if p.DiscountValue <= 0 || p.DiscountValue > 100 {
			return invalid("percent discount must be between 0 and 100")
		}
	case models.DiscountFixed:
		if p.DiscountValue <= 0 {
			return invalid("fixed discount must be positive")
		}
	default:
		return invalid("discount_type must be percent or fixed")
	}
	if p.MinPurchase < 0 || p.MaxDiscount < 0 || p.UsageLimit < 0 {
		return invalid("promotion amounts and limits cannot be negative")
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return invalid("ends_at is before starts_at")
	}
	if p.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*p.Code))
		if code == "" {
			p.Code = nil
		} else {
			p.Code = &code
		}
	}
	if p.StartsAt != nil {
		t := p.StartsAt.UTC()
		p.StartsAt = &t
	}
	if p.EndsAt != nil {
		t := p.EndsAt.UTC()
		p.EndsAt = &t
	}
	return nil
}
