package pos

import (
	"context"
	"fmt"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/promptpay"
)

type PromptPayQR struct {
	OrderID     uint    `json:"order_id,omitempty"`
	Code        string  `json:"code,omitempty"`
	PromptPayID string  `json:"promptpay_id"`
	Amount      float64 `json:"amount"`
	Payload     string  `json:"payload"`
}

// PromptPayFor builds the payment QR payload for an amount using the shop's
// configured PromptPay id.
func (s *Service) PromptPayFor(ctx context.Context, amount float64) (*PromptPayQR, error) {
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if st.PromptPayID == "" {
		return nil, invalid("promptpay id is not configured")
	}
	payload, err := promptpay.Payload(st.PromptPayID, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &PromptPayQR{PromptPayID: st.PromptPayID, Amount: amount, Payload: payload}, nil
}

// OrderPromptPay builds the QR payload for the total of an unpaid order.
func (s *Service) OrderPromptPay(ctx context.Context, id uint) (*PromptPayQR, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == models.StatusCancelled {
		return nil, fmt.Errorf("%w: order %s is cancelled", ErrInvalidTransition, o.Code)
	}
	if o.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPaid, o.Code)
	}
	qr, err := s.PromptPayFor(ctx, o.Total)
	if err != nil {
		return nil, err
	}
	qr.OrderID = o.ID
	qr.Code = o.Code
	return qr, nil
}
