package address

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes the address book of the calling device.
type Handler struct {
	registry *Registry
	validate *validator.Validate
}

// NewHandler constructs an address handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry, validate: validator.New()}
}

type saveRequest struct {
	Title     string   `json:"title" validate:"required,max=40"`
	Address   string   `json:"address" validate:"required"`
	City      string   `json:"city"`
	Pincode   string   `json:"pincode" validate:"omitempty,numeric,len=6"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	IsDefault bool     `json:"isDefault"`
}

type locationRequest struct {
	Granted   bool     `json:"granted"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type selectRequest struct {
	Address   string   `json:"address" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type bookResponse struct {
	Addresses      []Address    `json:"addresses"`
	CurrentAddress string       `json:"current_address"`
	CurrentCoords  *Coordinates `json:"current_coords"`
}

func (h *Handler) book(c *fiber.Ctx) (*Book, error) {
	owner, _ := c.Locals("device_id").(string)
	if owner == "" {
		return nil, fiber.NewError(http.StatusBadRequest, "missing device id")
	}
	b, err := h.registry.Book(c.UserContext(), owner)
	if err != nil {
		return nil, fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return b, nil
}

func (h *Handler) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(dst); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func respond(c *fiber.Ctx, status int, b *Book) error {
	current, coords := b.Current()
	return c.Status(status).JSON(bookResponse{Addresses: b.Addresses(), CurrentAddress: current, CurrentCoords: coords})
}

func coordsOf(lat, lon *float64) *Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	return &Coordinates{Latitude: *lat, Longitude: *lon}
}

// List returns saved addresses and the current selection.
func (h *Handler) List(c *fiber.Ctx) error {
	b, err := h.book(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b)
}

// Save adds an address.
func (h *Handler) Save(c *fiber.Ctx) error {
	var req saveRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	b, err := h.book(c)
	if err != nil {
		return err
	}
	if _, err := b.SaveAddress(c.UserContext(), Input{
		Title: req.Title, Address: req.Address, City: req.City, Pincode: req.Pincode,
		Latitude: req.Latitude, Longitude: req.Longitude, IsDefault: req.IsDefault,
	}); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, b)
}

// SetDefault marks one address as the default.
func (h *Handler) SetDefault(c *fiber.Ctx) error {
	b, err := h.book(c)
	if err != nil {
		return err
	}
	if _, err := b.SetDefaultAddress(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, b)
}

// Delete removes an address.
func (h *Handler) Delete(c *fiber.Ctx) error {
	b, err := h.book(c)
	if err != nil {
		return err
	}
	if err := b.DeleteAddress(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, b)
}

// CurrentLocation resolves the position the device reported. A refused
// permission yields a prompt to open the system settings.
func (h *Handler) CurrentLocation(c *fiber.Ctx) error {
	var req locationRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	b, err := h.book(c)
	if err != nil {
		return err
	}
	formatted, err := b.GetCurrentLocation(c.UserContext(), ReportedLocator{Granted: req.Granted, Position: coordsOf(req.Latitude, req.Longitude)})
	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied):
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
				"prompt":  "open_settings",
			})
		case errors.Is(err, ErrNoPosition):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNoGeocodeResult):
			return c.Status(http.StatusOK).JSON(fiber.Map{"success": false, "error": err.Error()})
		default:
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"error":   "unable to get your current location, please try again or select manually",
			})
		}
	}
	_, coords := b.Current()
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "address": formatted, "coords": coords})
}

// Search forward-geocodes the q query parameter. Lookup failures return an empty list.
func (h *Handler) Search(c *fiber.Ctx) error {
	b, err := h.book(c)
	if err != nil {
		return err
	}
	results, _ := b.SearchAddresses(c.UserContext(), c.Query("q"))
	return c.Status(http.StatusOK).JSON(fiber.Map{"results": results})
}

// Select makes an unsaved address current.
func (h *Handler) Select(c *fiber.Ctx) error {
	var req selectRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	b, err := h.book(c)
	if err != nil {
		return err
	}
	b.SelectAddress(req.Address, coordsOf(req.Latitude, req.Longitude))
	return respond(c, http.StatusOK, b)
}
