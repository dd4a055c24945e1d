package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/homehelp/homehelp/internal/identity"
)

// CodeRequestLimit caps one-time-code requests per identifier (or client IP when
// the body carries none) within window. Identifiers are counted in their stored
// form, so every spelling of one phone number shares a window. Without Redis, or when Redis fails, it
// lets requests through.
func CodeRequestLimit(cache *redis.Client, countryCode string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Identifier string `json:"identifier"`
		}
		_ = c.BodyParser(&req)
		subject := c.IP()
		if id, err := identity.ParseIdentifier(req.Identifier, countryCode); err == nil {
			subject = strings.ToLower(id.Value)
		}

		key := "rl:otp:" + subject
		ctx := c.UserContext()
		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			cache.Expire(ctx, key, window)
		}
		if count > int64(max) {
			return fiber.NewError(http.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}
