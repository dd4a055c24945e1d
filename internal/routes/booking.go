package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/booking"
	"github.com/homehelp/homehelp/internal/catalog"
	"github.com/homehelp/homehelp/internal/pricing"
)

// RegisterCatalogRoutes wires browsing and price quotes used by the booking wizard.
func RegisterCatalogRoutes(r fiber.Router, cat *catalog.Handler, prices *pricing.Handler) {
	r.Get("/services", cat.Services)
	r.Get("/maids", cat.Maids)
	r.Post("/pricing/quote", prices.Quote)
	r.Post("/pricing/coupon", prices.ApplyCoupon)
}

// RegisterBookingRoutes wires booking endpoints. They all require a session.
func RegisterBookingRoutes(r fiber.Router, h *booking.Handler, requireSession, idempotent fiber.Handler) {
	r.Post("/bookings", requireSession, idempotent, h.Create)
	r.Get("/bookings", requireSession, h.List)
	r.Post("/bookings/:id/cancel", requireSession, h.Cancel)
}
