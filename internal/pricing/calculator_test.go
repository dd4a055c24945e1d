package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestQuoteTable(t *testing.T) {
	calc := NewCalculator()

	cases := []struct {
		name     string
		service  string
		duration int
		coupon   string
		total    int64
		discount int64
	}{
		{name: "single hour", service: "House Cleaning", duration: 1, total: 199},
		{name: "extra hours at 80 percent", service: "House Cleaning", duration: 3, total: 517},
		{name: "percentage coupon rounds", service: "Cooking", duration: 1, coupon: "WELCOME20", total: 199, discount: 50},
		{name: "flat coupon", service: "House Cleaning", duration: 1, coupon: "FIRST50", total: 149, discount: 50},
		{name: "coupon is case insensitive", service: "House Cleaning", duration: 1, coupon: "first50", total: 149, discount: 50},
		{name: "unknown service falls back", service: "Gardening", duration: 1, total: 199},
		{name: "zero duration has no extra cost", service: "Elderly Care", duration: 0, total: 349},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := calc.Quote(tc.service, tc.duration, tc.coupon)
			require.NoError(t, err)
			require.Equal(t, tc.total, q.Total.IntPart())
			require.Equal(t, tc.discount, q.Discount.IntPart())
		})
	}
}

func TestQuoteRejectsUnknownCoupon(t *testing.T) {
	q, err := NewCalculator().Quote("Babysitting", 2, "HALFOFF")
	require.ErrorIs(t, err, ErrInvalidCoupon)
	require.True(t, q.Discount.IsZero())
	require.Empty(t, q.Coupon)
	// 299 + round(299 * 0.8)
	require.Equal(t, int64(538), q.Total.IntPart())
}

func TestQuotePercentageAppliesToDurationCost(t *testing.T) {
	q, err := NewCalculator().Quote("House Cleaning", 3, "WELCOME20")
	require.NoError(t, err)
	require.Equal(t, int64(517), q.Subtotal().IntPart())
	require.Equal(t, int64(103), q.Discount.IntPart())
	require.Equal(t, int64(414), q.Total.IntPart())
}

func TestQuoteTotalIsNotClamped(t *testing.T) {
	calc := &Calculator{basePrices: map[string]decimal.Decimal{"Tiny": decimal.NewFromInt(30)}, fallback: defaultBasePrice}
	q, err := calc.Quote("Tiny", 1, "FIRST50")
	require.NoError(t, err)
	require.True(t, q.Total.IsNegative())
}
