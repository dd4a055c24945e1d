package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/homehelp/homehelp/internal/logging"
)

func setupPricingApp(t *testing.T) *fiber.App {
	t.Helper()
	h := NewHandler(NewService(nil, logging.Discard()))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("device_id", "device-1")
		return c.Next()
	})
	app.Post("/quote", h.Quote)
	app.Post("/coupon", h.ApplyCoupon)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, quoteResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out quoteResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHandlerQuote(t *testing.T) {
	app := setupPricingApp(t)

	status, q := post(t, app, "/quote", `{"service":"House Cleaning","duration":2,"coupon":"first50"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(199), q.BasePrice)
	require.Equal(t, float64(159), q.DurationCost)
	require.Equal(t, float64(50), q.Discount)
	require.Equal(t, float64(308), q.Total)
	require.Equal(t, "FIRST50", q.Coupon)
	require.NotNil(t, q.CouponValid)
	require.True(t, *q.CouponValid)

	status, q = post(t, app, "/quote", `{"service":"House Cleaning","duration":2,"coupon":"BOGUS"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(358), q.Total)
	require.NotNil(t, q.CouponValid)
	require.False(t, *q.CouponValid)

	status, q = post(t, app, "/quote", `{"service":"Cooking","duration":1}`)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, q.CouponValid)
}

func TestHandlerQuoteValidation(t *testing.T) {
	app := setupPricingApp(t)

	status, _ := post(t, app, "/quote", `{"service":"Cooking","duration":0}`)
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = post(t, app, "/quote", `{"duration":2}`)
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = post(t, app, "/coupon", `{"service":"Cooking","duration":13,"coupon":"FIRST50"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHandlerApplyCoupon(t *testing.T) {
	app := setupPricingApp(t)

	status, q := post(t, app, "/coupon", `{"service":"Cooking","duration":1,"coupon":"welcome20"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "WELCOME20", q.Coupon)
	require.Equal(t, float64(199), q.Total)

	status, _ = post(t, app, "/coupon", `{"service":"Cooking","duration":1,"coupon":"BOGUS"}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = post(t, app, "/coupon", `{"service":"Cooking","duration":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
}
