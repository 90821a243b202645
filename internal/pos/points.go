package pos

import (
	"context"
	"errors"
	"math"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

// EarnedPoints is floor(total / spend_per_point) × points_per_step, or 0 when
// the program is off or the order is below the minimum.
func EarnedPoints(ps *models.PointSetting, total float64) int {
	if ps == nil || !ps.Enabled || ps.SpendPerPoint <= 0 || total < ps.MinOrderTotal {
		return 0
	}
	steps := math.Floor(utils.Money(total) / ps.SpendPerPoint)
	return int(steps) * ps.PointsPerStep
}

// RedemptionDiscount caps the rule's amount at what is left to pay.
func RedemptionDiscount(rule *models.PointRedemptionRule, remaining float64) float64 {
	if remaining <= 0 {
		return 0
	}
	return utils.Money(math.Min(rule.DiscountAmount, remaining))
}

type PointsPreviewInput struct {
	MemberID *uint   `json:"member_id"`
	Subtotal float64 `json:"subtotal" binding:"min=0"`
	Discount float64 `json:"discount" binding:"min=0"`
}

type RuleOption struct {
	models.PointRedemptionRule
	Eligible bool    `json:"eligible"`
	Discount float64 `json:"discount"`
}

type PointsPreview struct {
	Enabled      bool         `json:"enabled"`
	PointsToEarn int          `json:"points_to_earn"`
	MemberPoints int          `json:"member_points"`
	Rules        []RuleOption `json:"rules"`
}

// PreviewPoints shows what an order of the given size would earn and which
// redemption rules the member can use on it.
func (s *Service) PreviewPoints(ctx context.Context, in PointsPreviewInput) (*PointsPreview, error) {
	ps, err := s.store.GetPointSettings(ctx)
	if err != nil {
		return nil, err
	}
	remaining := utils.Money(in.Subtotal - in.Discount)
	out := &PointsPreview{Enabled: ps.Enabled, PointsToEarn: EarnedPoints(ps, remaining), Rules: []RuleOption{}}

	if in.MemberID != nil {
		m, err := s.store.GetMember(ctx, *in.MemberID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid("member %d does not exist", *in.MemberID)
		}
		if err != nil {
			return nil, err
		}
		out.MemberPoints = m.Points
	}

	rules, err := s.store.ListRedemptionRules(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, r := range rules {
		out.Rules = append(out.Rules, RuleOption{
			PointRedemptionRule: r,
			Eligible:            in.MemberID != nil && out.MemberPoints >= r.PointsRequired && remaining > 0,
			Discount:            RedemptionDiscount(&r, remaining),
		})
	}
	return out, nil
}

// CheckPointSettings validates loyalty settings before they are saved.
func CheckPointSettings(ps *models.PointSetting) error {
	if ps.SpendPerPoint <= 0 {
		return invalid("spend_per_point must be positive")
	}
	if ps.PointsPerStep < 1 {
		return invalid("points_per_step must be at least 1")
	}
	if ps.MinOrderTotal < 0 {
		return invalid("min_order_total cannot be negative")
	}
	return nil
}

func CheckRedemptionRule(r *models.PointRedemptionRule) error {
	if r.Name == "" {
		return invalid("name is required")
	}
	if r.PointsRequired <= 0 || r.DiscountAmount <= 0 {
		return invalid("points_required and discount_amount must be positive")
	}
	return nil
}
