package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/identity"
)

// RegisterAuthRoutes wires sign-in, sign-out and profile endpoints.
// optionalSession attaches the caller's session when a token is sent;
// sign-out and session reads decide what an anonymous device may do.
func RegisterAuthRoutes(r fiber.Router, h *identity.Handler, codeLimit, optionalSession, requireSession fiber.Handler) {
	r.Post("/auth/otp/request", codeLimit, h.RequestCode)
	r.Post("/auth/otp/verify", h.VerifyCode)
	r.Post("/auth/profile", h.CreateProfile)
	r.Get("/auth/google", h.GoogleStart)
	r.Post("/auth/signout", optionalSession, h.SignOut)
	r.Get("/auth/session", optionalSession, h.Session)

	r.Get("/me", requireSession, h.Me)
	r.Put("/me", requireSession, h.UpdateMe)
}
