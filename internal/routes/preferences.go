package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/preferences"
)

// RegisterPreferenceRoutes wires settings endpoints.
func RegisterPreferenceRoutes(r fiber.Router, h *preferences.Handler) {
	r.Get("/preferences", h.Get)
	r.Put("/preferences", h.Update)
	r.Delete("/preferences/cache", h.ClearCache)
}
