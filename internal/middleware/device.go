package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DeviceIDHeader identifies the calling installation of the app.
const DeviceIDHeader = "X-Device-ID"

// DeviceID requires the X-Device-ID header and stores it under the "device_id" local.
func DeviceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		device := strings.TrimSpace(c.Get(DeviceIDHeader))
		if device == "" || len(device) > 128 || strings.ContainsAny(device, ": ") {
			return fiber.NewError(http.StatusBadRequest, "missing or invalid "+DeviceIDHeader+" header")
		}
		c.Locals("device_id", device)
		return c.Next()
	}
}
