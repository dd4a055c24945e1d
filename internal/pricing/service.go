package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/homehelp/homehelp/internal/metrics"
)

// ErrCouponRequired is returned when a coupon application carries no code.
var ErrCouponRequired = errors.New("coupon code is required")

// QuoteInput is the booking selection being priced.
type QuoteInput struct {
	Service  string
	Duration int
	Coupon   string
}

// Service exposes pricing to the booking wizard. Concurrent identical coupon
// applications from one owner share a single evaluation.
type Service struct {
	calc   *Calculator
	group  singleflight.Group
	logger *slog.Logger
}

// NewService builds a pricing service over calc.
func NewService(calc *Calculator, logger *slog.Logger) *Service {
	if calc == nil {
		calc = NewCalculator()
	}
	return &Service{calc: calc, logger: logger}
}

// Calculator returns the underlying calculator.
func (s *Service) Calculator() *Calculator {
	return s.calc
}

// Quote prices input. ErrInvalidCoupon accompanies a valid coupon-free quote.
func (s *Service) Quote(_ context.Context, input QuoteInput) (Quote, error) {
	return s.calc.Quote(input.Service, input.Duration, input.Coupon)
}

type applyResult struct {
	quote Quote
	err   error
}

// ApplyCoupon validates input.Coupon and returns the discounted quote. A repeat of
// an in-flight application for the same owner and selection waits for and reuses
// the first result instead of racing it.
func (s *Service) ApplyCoupon(ctx context.Context, owner string, input QuoteInput) (Quote, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Coupon))
	if code == "" {
		return Quote{}, ErrCouponRequired
	}
	key := fmt.Sprintf("%s|%s|%d|%s", owner, input.Service, input.Duration, code)

	ch := s.group.DoChan(key, func() (any, error) {
		q, err := s.calc.Quote(input.Service, input.Duration, code)
		return applyResult{quote: q, err: err}, nil
	})

	select {
	case <-ctx.Done():
		return Quote{}, ctx.Err()
	case res := <-ch:
		out := res.Val.(applyResult)
		result := "applied"
		if out.err != nil {
			result = "rejected"
		}
		metrics.CouponsApplied.WithLabelValues(result).Inc()
		if out.err != nil && s.logger != nil {
			s.logger.Info("coupon rejected", slog.String("owner", owner), slog.String("code", code))
		}
		return out.quote, out.err
	}
}
