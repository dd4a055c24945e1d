package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/homehelp/homehelp/internal/logging"
)

func setupIdempotentApp(t *testing.T, status int) (*fiber.App, *int32) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	var calls int32
	app := fiber.New()
	app.Use(DeviceID())
	app.Post("/bookings", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(status).JSON(fiber.Map{"call": n})
	})
	return app, &calls
}

func postBooking(t *testing.T, app *fiber.App, device, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/bookings", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(DeviceIDHeader, device)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _ := setupIdempotentApp(t, fiber.StatusCreated)

	status, _ := postBooking(t, app, "dev-1", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupIdempotentApp(t, fiber.StatusCreated)

	status, first := postBooking(t, app, "dev-1", "abc123")
	if status != fiber.StatusCreated {
		t.Fatalf("expected status %d got %d", fiber.StatusCreated, status)
	}
	status, second := postBooking(t, app, "dev-1", "abc123")
	if status != fiber.StatusCreated {
		t.Fatalf("expected cached status %d got %d", fiber.StatusCreated, status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
}

func TestIdempotencyKeysAreScopedPerDevice(t *testing.T) {
	app, calls := setupIdempotentApp(t, fiber.StatusCreated)

	postBooking(t, app, "dev-1", "same")
	postBooking(t, app, "dev-2", "same")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("handler ran %d times, want 2", got)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	app, calls := setupIdempotentApp(t, fiber.StatusInternalServerError)

	postBooking(t, app, "dev-1", "retry-me")
	postBooking(t, app, "dev-1", "retry-me")
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("handler ran %d times, want 2", got)
	}
}
