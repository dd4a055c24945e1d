package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/address"
)

// RegisterAddressRoutes wires the device's saved addresses and location lookup.
func RegisterAddressRoutes(r fiber.Router, h *address.Handler) {
	r.Get("/addresses", h.List)
	r.Post("/addresses", h.Save)
	r.Post("/addresses/current", h.CurrentLocation)
	r.Post("/addresses/select", h.Select)
	r.Get("/addresses/search", h.Search)
	r.Put("/addresses/:id/default", h.SetDefault)
	r.Delete("/addresses/:id", h.Delete)
}
