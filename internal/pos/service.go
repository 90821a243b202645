// Package pos implements the shop's business rules: order codes, pricing,
// promotions, loyalty points, the order status machine, inventory deduction
// and payment.
package pos

import (
	"errors"
	"fmt"
	"time"

	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInsufficientPoints     = errors.New("insufficient points")
	ErrPromotionNotApplicable = errors.New("promotion not applicable")
	ErrAlreadyPaid            = errors.New("order already paid")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type Service struct {
	store  *store.Store
	events realtime.Publisher
	loc    *time.Location
	now    func() time.Time
	lg     *logger.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the service. loc is the shop timezone used for order
// codes and daily reports.
func NewService(st *store.Store, events realtime.Publisher, loc *time.Location, lg *logger.Logger, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		store:  st,
		events: events,
		loc:    loc,
		now:    time.Now,
		lg:     lg.With("pos"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time { return s.now().UTC() }

// Location is the shop timezone.
func (s *Service) Location() *time.Location { return s.loc }
