// Package pricing computes booking totals from a service, a duration and an
// optional coupon code.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is returned alongside a coupon-free quote when the code is unknown.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// CouponKind distinguishes percentage discounts from flat ones.
type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFlat    CouponKind = "flat"
)

// Coupon maps a code to a discount rule.
type Coupon struct {
	Code  string
	Kind  CouponKind
	Value decimal.Decimal
}

var (
	defaultBasePrice = decimal.NewFromInt(199)

	extraHourRate = decimal.RequireFromString("0.8")
	hundred       = decimal.NewFromInt(100)

	defaultBasePrices = map[string]decimal.Decimal{
		"House Cleaning": decimal.NewFromInt(199),
		"Cooking":        decimal.NewFromInt(249),
		"Babysitting":    decimal.NewFromInt(299),
		"Elderly Care":   decimal.NewFromInt(349),
	}

	knownCoupons = map[string]Coupon{
		"WELCOME20": {Code: "WELCOME20", Kind: CouponPercent, Value: decimal.NewFromInt(20)},
		"FIRST50":   {Code: "FIRST50", Kind: CouponFlat, Value: decimal.NewFromInt(50)},
	}
)

// Quote is the price breakdown for one booking selection.
type Quote struct {
	Service      string
	Duration     int
	Base         decimal.Decimal
	DurationCost decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	Coupon       string
}

// Subtotal is the price before any coupon.
func (q Quote) Subtotal() decimal.Decimal {
	return q.Base.Add(q.DurationCost)
}

// Calculator prices services from a fixed table.
type Calculator struct {
	basePrices map[string]decimal.Decimal
	fallback   decimal.Decimal
}

// NewCalculator returns a calculator over the standard price table.
func NewCalculator() *Calculator {
	return &Calculator{basePrices: defaultBasePrices, fallback: defaultBasePrice}
}

// BasePrice returns the first-hour price for service; unknown services use the default.
func (c *Calculator) BasePrice(service string) decimal.Decimal {
	if p, ok := c.basePrices[service]; ok {
		return p
	}
	return c.fallback
}

// LookupCoupon matches code case-insensitively against the known coupons.
func LookupCoupon(code string) (Coupon, bool) {
	coupon, ok := knownCoupons[strings.ToUpper(strings.TrimSpace(code))]
	return coupon, ok
}

// Quote prices a booking. Every hour after the first is billed at 80% of the base
// rate, rounded to the rupee. An unknown coupon yields a coupon-free quote and
// ErrInvalidCoupon. The total is not clamped at zero.
func (c *Calculator) Quote(service string, durationHours int, couponCode string) (Quote, error) {
	q := Quote{
		Service:      service,
		Duration:     durationHours,
		Base:         c.BasePrice(service),
		DurationCost: decimal.Zero,
		Discount:     decimal.Zero,
	}

	if durationHours > 1 {
		extra := decimal.NewFromInt(int64(durationHours - 1))
		q.DurationCost = q.Base.Mul(extra).Mul(extraHourRate).Round(0)
	}

	var couponErr error
	if strings.TrimSpace(couponCode) != "" {
		coupon, ok := LookupCoupon(couponCode)
		if ok {
			q.Coupon = coupon.Code
			q.Discount = discountFor(coupon, q.Subtotal())
		} else {
			couponErr = ErrInvalidCoupon
		}
	}

	q.Total = q.Subtotal().Sub(q.Discount)
	return q, couponErr
}

func discountFor(coupon Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.Kind {
	case CouponPercent:
		return subtotal.Mul(coupon.Value).Div(hundred).Round(0)
	case CouponFlat:
		return coupon.Value
	default:
		return decimal.Zero
	}
}
