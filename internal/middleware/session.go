package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/auth"
	"github.com/homehelp/homehelp/internal/identity"
)

// SessionAuth validates the bearer token and checks that it still names the
// device's current session, so signing out revokes it. On success the
// "user_id", "session" and "contact" locals are set.
func SessionAuth(tokens *auth.Tokens, sessions identity.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !hasBearer(c) {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		if err := authenticate(c, tokens, sessions); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalSession behaves like SessionAuth when a bearer token is sent and
// lets the request through untouched when none is.
func OptionalSession(tokens *auth.Tokens, sessions identity.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !hasBearer(c) {
			return c.Next()
		}
		if err := authenticate(c, tokens, sessions); err != nil {
			return err
		}
		return c.Next()
	}
}

func hasBearer(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderAuthorization)), "bearer ")
}

func authenticate(c *fiber.Ctx, tokens *auth.Tokens, sessions identity.SessionStore) error {
	authz := c.Get(fiber.HeaderAuthorization)
	claims, err := tokens.Parse(strings.TrimSpace(authz[len("Bearer "):]))
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid token")
	}

	device, _ := c.Locals("device_id").(string)
	if device != "" && device != claims.DeviceID {
		return fiber.NewError(http.StatusUnauthorized, "token issued to another device")
	}

	session, err := sessions.Get(c.UserContext(), claims.DeviceID)
	if errors.Is(err, identity.ErrNoSession) || (err == nil && session.ID != claims.SessionID) {
		return fiber.NewError(http.StatusUnauthorized, "session ended")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "session lookup failed")
	}

	contact := session.Phone
	if contact == "" {
		contact = session.Email
	}
	c.Locals("user_id", claims.Subject)
	c.Locals("session", session)
	c.Locals("contact", contact)
	return nil
}
