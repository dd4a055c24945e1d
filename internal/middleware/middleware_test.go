package middleware

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/homehelp/homehelp/internal/auth"
	"github.com/homehelp/homehelp/internal/identity"
	"github.com/homehelp/homehelp/internal/logging"
)

func TestDeviceIDRequired(t *testing.T) {
	app := fiber.New()
	app.Use(DeviceID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("device_id").(string))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(DeviceIDHeader, "dev-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-42", resp.Header.Get(requestIDHeader))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestAuditPassesErrorsThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Audit(logging.Discard()))
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func sessionApp(t *testing.T) (*fiber.App, *auth.Tokens, identity.SessionStore) {
	t.Helper()
	tokens := auth.NewTokens("test-secret", time.Hour)
	sessions := identity.NewMemorySessionStore()

	app := fiber.New()
	app.Use(DeviceID())
	app.Get("/me", SessionAuth(tokens, sessions), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id"), "contact": c.Locals("contact")})
	})
	return app, tokens, sessions
}

func getMe(t *testing.T, app *fiber.App, device, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(DeviceIDHeader, device)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestSessionAuth(t *testing.T) {
	app, tokens, sessions := sessionApp(t)
	ctx := context.Background()
	require.NoError(t, sessions.Put(ctx, "dev-1", identity.Session{
		ID: "sess-1", ProfileID: "user-1", Phone: "+919876543210", DeviceID: "dev-1",
	}))

	token, _, err := tokens.Issue("user-1", "sess-1", "dev-1")
	require.NoError(t, err)

	require.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "dev-1", ""))
	require.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "dev-1", "garbage"))
	require.Equal(t, fiber.StatusOK, getMe(t, app, "dev-1", token))
	require.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "dev-2", token))

	stale, _, err := tokens.Issue("user-1", "sess-0", "dev-1")
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "dev-1", stale))

	require.NoError(t, sessions.Delete(ctx, "dev-1"))
	require.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "dev-1", token))
}

func TestCodeRequestLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Post("/otp", CodeRequestLimit(cache, "+91", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(identifier string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/otp", strings.NewReader(`{"identifier":"`+identifier+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send("a@example.com"))
	require.Equal(t, fiber.StatusOK, send("A@example.com"))
	require.Equal(t, fiber.StatusTooManyRequests, send("a@example.com"))
	require.Equal(t, fiber.StatusOK, send("b@example.com"))

	mr.FastForward(2 * time.Minute)
	require.Equal(t, fiber.StatusOK, send("a@example.com"))
}

func TestCodeRequestLimitNormalizesPhoneNumbers(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Post("/otp", CodeRequestLimit(cache, "+91", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	send := func(identifier string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/otp", strings.NewReader(`{"identifier":"`+identifier+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send("9876543210"))
	require.Equal(t, fiber.StatusOK, send("98765 43210"))
	require.Equal(t, fiber.StatusTooManyRequests, send("+919876543210"))
	require.True(t, mr.Exists("rl:otp:+919876543210"))
}

func TestCodeRequestLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/otp", CodeRequestLimit(nil, "+91", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/otp", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
