package pricing

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homehelp/homehelp/internal/logging"
)

func TestApplyCoupon(t *testing.T) {
	svc := NewService(nil, logging.Discard())
	ctx := context.Background()

	q, err := svc.ApplyCoupon(ctx, "device-1", QuoteInput{Service: "Cooking", Duration: 1, Coupon: "welcome20"})
	require.NoError(t, err)
	require.Equal(t, "WELCOME20", q.Coupon)
	require.Equal(t, int64(199), q.Total.IntPart())

	_, err = svc.ApplyCoupon(ctx, "device-1", QuoteInput{Service: "Cooking", Duration: 1, Coupon: "  "})
	require.ErrorIs(t, err, ErrCouponRequired)

	_, err = svc.ApplyCoupon(ctx, "device-1", QuoteInput{Service: "Cooking", Duration: 1, Coupon: "BOGUS"})
	require.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestApplyCouponConcurrentCallsAgree(t *testing.T) {
	svc := NewService(nil, logging.Discard())
	ctx := context.Background()

	const callers = 16
	results := make([]Quote, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := svc.ApplyCoupon(ctx, "device-1", QuoteInput{Service: "House Cleaning", Duration: 2, Coupon: "FIRST50"})
			if err != nil {
				t.Errorf("apply %d: %v", i, err)
				return
			}
			results[i] = q
		}(i)
	}
	wg.Wait()

	for _, q := range results {
		require.True(t, q.Total.Equal(results[0].Total))
	}
}

func TestApplyCouponHonoursCancelledContext(t *testing.T) {
	svc := NewService(nil, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The evaluation may still win the select; either outcome is acceptable but must not hang.
	_, err := svc.ApplyCoupon(ctx, "device-1", QuoteInput{Service: "Cooking", Duration: 1, Coupon: "FIRST50"})
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
}
