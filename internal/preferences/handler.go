package preferences

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes the settings screen.
type Handler struct {
	store    *Store
	validate *validator.Validate
}

// NewHandler constructs a preferences handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store, validate: validator.New()}
}

type updateRequest struct {
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	PushNotifications    *bool   `json:"pushNotifications"`
	EmailNotifications   *bool   `json:"emailNotifications"`
	ThemeMode            *string `json:"themeMode" validate:"omitempty,oneof=light dark system"`
	Language             *string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

func owner(c *fiber.Ctx) (string, error) {
	device, _ := c.Locals("device_id").(string)
	if device == "" {
		return "", fiber.NewError(http.StatusBadRequest, "missing device id")
	}
	return device, nil
}

// Get returns the device's preferences.
func (h *Handler) Get(c *fiber.Ctx) error {
	device, err := owner(c)
	if err != nil {
		return err
	}
	prefs, err := h.store.Get(c.UserContext(), device)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(prefs)
}

// Update changes some preferences.
func (h *Handler) Update(c *fiber.Ctx) error {
	device, err := owner(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	prefs, err := h.store.Update(c.UserContext(), device, Update{
		NotificationsEnabled: req.NotificationsEnabled,
		PushNotifications:    req.PushNotifications,
		EmailNotifications:   req.EmailNotifications,
		ThemeMode:            req.ThemeMode,
		Language:             req.Language,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTheme) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(prefs)
}

// ClearCache drops cached catalog data.
func (h *Handler) ClearCache(c *fiber.Ctx) error {
	device, err := owner(c)
	if err != nil {
		return err
	}
	if err := h.store.ClearCache(c.UserContext(), device); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}
