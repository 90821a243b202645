package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

type CreateOrderInput struct {
	Items            []ItemInput `json:"items" binding:"required,min=1,dive"`
	MemberID         *uint       `json:"member_id"`
	CustomerName     string      `json:"customer_name" binding:"max=255"`
	OrderType        string      `json:"order_type" binding:"omitempty,oneof=dine_in takeaway"`
	Source           string      `json:"source" binding:"omitempty,oneof=pos customer"`
	TableNumber      string      `json:"table_number" binding:"max=16"`
	Note             string      `json:"note" binding:"max=1000"`
	PromotionID      *uint       `json:"promotion_id"`
	PromotionCode    string      `json:"promotion_code" binding:"max=64"`
	RedemptionRuleID *uint       `json:"redemption_rule_id"`
	PaymentMethod    string      `json:"payment_method" binding:"omitempty,oneof=cash promptpay card"`
}

type PayInput struct {
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=cash promptpay card"`
	CashReceived  float64 `json:"cash_received" binding:"min=0"`
}

// CreateOrder prices the items, applies the promotion and point redemption,
// assigns the next order code of the day and stores everything in one
// transaction.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.OrderType == "" {
		in.OrderType = models.OrderTypeTakeaway
	}
	if in.Source == "" {
		in.Source = models.SourcePOS
	}
	if in.OrderType != models.OrderTypeDineIn && in.OrderType != models.OrderTypeTakeaway {
		return nil, invalid("order_type must be dine_in or takeaway")
	}
	if in.Source != models.SourcePOS && in.Source != models.SourceCustomer {
		return nil, invalid("source must be pos or customer")
	}
	if in.RedemptionRuleID != nil && in.MemberID == nil {
		return nil, invalid("redeeming points needs a member")
	}

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		order, err = s.createOrderTx(ctx, in)
		if err == nil || !store.IsDuplicate(err) {
			break
		}
		s.lg.Warn("order_code_collision", map[string]any{"attempt": attempt})
	}
	if err != nil {
		return nil, err
	}

	s.lg.Info("order_created", map[string]any{"order_id": order.ID, "code": order.Code, "total": order.Total, "source": order.Source})
	s.events.Publish(ctx, realtime.OrderCreated, order)
	if order.PointsRedeemed > 0 && order.MemberID != nil {
		s.events.Publish(ctx, realtime.PointsChanged, map[string]any{"member_id": *order.MemberID, "delta": -order.PointsRedeemed, "order_id": order.ID})
	}
	return order, nil
}

func (s *Service) createOrderTx(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if in.Source == models.SourceCustomer {
			st, err := tx.GetSettings(ctx)
			if err != nil {
				return err
			}
			if !st.AcceptCustomerOrders {
				return invalid("the shop is not taking customer orders")
			}
		}

		items, subtotal, err := priceItems(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		now := s.clock()
		o := &models.Order{
			MemberID:      in.MemberID,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			OrderType:     in.OrderType,
			Source:        in.Source,
			TableNumber:   in.TableNumber,
			Status:        models.StatusPending,
			PaymentMethod: in.PaymentMethod,
			PaymentStatus: models.PaymentUnpaid,
			Subtotal:      subtotal,
			Note:          in.Note,
			Items:         items,
		}

		var member *models.Member
		if in.MemberID != nil {
			member, err = tx.GetMember(ctx, *in.MemberID)
			if errors.Is(err, store.ErrNotFound) {
				return invalid("member %d does not exist", *in.MemberID)
			}
			if err != nil {
				return err
			}
			if o.CustomerName == "" {
				o.CustomerName = member.Name
			}
		}

		q := PromotionQuery{PromotionID: in.PromotionID, Code: in.PromotionCode, Subtotal: subtotal}
		if !q.empty() {
			p, err := findPromotion(ctx, tx, q)
			if err != nil {
				return err
			}
			discount, err := PromotionDiscount(p, subtotal, now)
			if err != nil {
				return err
			}
			if err := tx.IncrementPromotionUsage(ctx, p.ID); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return fmt.Errorf("%w: %s has reached its usage limit", ErrPromotionNotApplicable, p.Name)
				}
				return err
			}
			o.PromotionID = &p.ID
			o.PromotionDiscount = discount
		}

		if in.RedemptionRuleID != nil {
			rule, err := tx.GetRedemptionRule(ctx, *in.RedemptionRuleID)
			if errors.Is(err, store.ErrNotFound) || (err == nil && !rule.Active) {
				return invalid("redemption rule %d is not available", *in.RedemptionRuleID)
			}
			if err != nil {
				return err
			}
			if member.Points < rule.PointsRequired {
				return fmt.Errorf("%w: %d needed, %d available", ErrInsufficientPoints, rule.PointsRequired, member.Points)
			}
			discount := RedemptionDiscount(rule, subtotal-o.PromotionDiscount)
			if discount <= 0 {
				return invalid("nothing left to discount with points")
			}
			if err := tx.AdjustMemberPoints(ctx, member.ID, -rule.PointsRequired); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return fmt.Errorf("%w: %d needed", ErrInsufficientPoints, rule.PointsRequired)
				}
				return err
			}
			o.RedemptionRuleID = &rule.ID
			o.PointsRedeemed = rule.PointsRequired
			o.PointsDiscount = discount
		}

		o.Total = utils.Money(subtotal - o.PromotionDiscount - o.PointsDiscount)
		if o.Total < 0 {
			o.Total = 0
		}

		prefix := codePrefix(now, s.loc)
		seq, err := tx.LastOrderSequence(ctx, prefix)
		if err != nil {
			return err
		}
		o.Code = formatOrderCode(prefix, seq+1)
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order through the status machine and applies the
// side effects of completion and cancellation.
func (s *Service) UpdateStatus(ctx context.Context, id uint, to, reason string) (*models.Order, error) {
	if !ValidStatus(to) {
		return nil, invalid("unknown status %q", to)
	}

	var (
		order     *models.Order
		from      string
		lowStock  []models.InventoryItem
		paidNow   bool
		pointsNet int
	)
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if o.IsTerminal() {
			return fmt.Errorf("%w: order %s is already %s", ErrInvalidTransition, o.Code, from)
		}
		if !CanTransition(from, to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
		}
		now := s.clock()
		o.Status = to

		switch to {
		case models.StatusCompleted:
			o.CompletedAt = &now
			if o.PaymentStatus != models.PaymentPaid {
				if o.PaymentMethod == "" {
					o.PaymentMethod = models.PaymentCash
				}
				o.PaymentStatus = models.PaymentPaid
				o.PaidAt = &now
				paidNow = true
			}
			lowStock, err = s.deductInventory(ctx, tx, o)
			if err != nil {
				return err
			}
			if o.MemberID != nil {
				ps, err := tx.GetPointSettings(ctx)
				if err != nil {
					return err
				}
				o.PointsEarned = EarnedPoints(ps, o.Total)
				if err := tx.RecordVisit(ctx, *o.MemberID, o.Total, o.PointsEarned, now); err != nil {
					return err
				}
				pointsNet = o.PointsEarned
			}
		case models.StatusCancelled:
			o.CancelledAt = &now
			o.CancelReason = strings.TrimSpace(reason)
			if o.MemberID != nil && o.PointsRedeemed > 0 {
				if err := tx.AdjustMemberPoints(ctx, *o.MemberID, o.PointsRedeemed); err != nil {
					return err
				}
				pointsNet = o.PointsRedeemed
			}
		}

		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order_status_changed", map[string]any{"order_id": order.ID, "code": order.Code, "from": from, "to": to})
	s.events.Publish(ctx, realtime.OrderStatusChanged, map[string]any{"id": order.ID, "code": order.Code, "from": from, "to": to})
	s.events.Publish(ctx, realtime.OrderUpdated, order)
	if paidNow {
		s.events.Publish(ctx, realtime.OrderPaid, order)
	}
	if pointsNet != 0 {
		s.events.Publish(ctx, realtime.PointsChanged, map[string]any{"member_id": *order.MemberID, "delta": pointsNet, "order_id": order.ID})
	}
	if to == models.StatusCompleted {
		s.events.Publish(ctx, realtime.InventoryChanged, map[string]any{"order_id": order.ID})
	}
	for i := range lowStock {
		s.events.Publish(ctx, realtime.InventoryLowStock, lowStock[i])
	}
	return order, nil
}

// Pay records payment for an order. Cash must cover the total.
func (s *Service) Pay(ctx context.Context, id uint, in PayInput) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == models.StatusCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidTransition, o.Code)
		}
		if o.PaymentStatus == models.PaymentPaid {
			return fmt.Errorf("%w: %s", ErrAlreadyPaid, o.Code)
		}

		switch in.PaymentMethod {
		case models.PaymentCash:
			cash := utils.Money(in.CashReceived)
			if cash < o.Total {
				return invalid("cash received %s is less than the total %s", utils.FormatMoney(cash), utils.FormatMoney(o.Total))
			}
			o.CashReceived = cash
			o.ChangeDue = utils.Money(cash - o.Total)
		case models.PaymentPromptPay, models.PaymentCard:
			o.CashReceived = 0
			o.ChangeDue = 0
		default:
			return invalid("payment_method must be cash, promptpay or card")
		}

		now := s.clock()
		o.PaymentMethod = in.PaymentMethod
		o.PaymentStatus = models.PaymentPaid
		o.PaidAt = &now
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order_paid", map[string]any{"order_id": order.ID, "code": order.Code, "method": order.PaymentMethod, "total": order.Total})
	s.events.Publish(ctx, realtime.OrderPaid, order)
	return order, nil
}

// DayRange converts a shop-local YYYY-MM-DD date into a UTC [start, end) range.
func (s *Service) DayRange(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("date must be YYYY-MM-DD")
	}
	return d.UTC(), d.AddDate(0, 0, 1).UTC(), nil
}

// Today is the current shop-local date.
func (s *Service) Today() string {
	return s.clock().In(s.loc).Format("2006-01-02")
}
