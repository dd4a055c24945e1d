package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/homehelp/homehelp/internal/catalog"
	"github.com/homehelp/homehelp/internal/pricing"
)

// Handler exposes booking endpoints for the signed-in user.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a booking handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type createRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
	MaidID    string `json:"maid_id"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required"`
	Duration  int    `json:"duration" validate:"required,min=1,max=12"`
	Address   string `json:"address" validate:"required"`
	Coupon    string `json:"coupon"`
}

type bookingResponse struct {
	ID         string    `json:"id"`
	ServiceID  string    `json:"service_id"`
	MaidID     string    `json:"maid_id,omitempty"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Duration   int       `json:"duration"`
	Address    string    `json:"address"`
	Status     Status    `json:"status"`
	CouponCode string    `json:"coupon_code,omitempty"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	Service    fiber.Map `json:"services,omitempty"`
	Maid       fiber.Map `json:"maids,omitempty"`
}

func toResponse(b Booking) bookingResponse {
	return bookingResponse{
		ID: b.ID, ServiceID: b.ServiceID, MaidID: b.MaidID, Date: b.Date, Time: b.Time,
		Duration: b.Duration, Address: b.Address, Status: b.Status, CouponCode: b.CouponCode,
		TotalPrice: b.TotalPrice.InexactFloat64(), CreatedAt: b.CreatedAt,
	}
}

func contactOf(c *fiber.Ctx) string {
	contact, _ := c.Locals("contact").(string)
	return contact
}

// Create confirms the booking wizard's selection.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)

	b, err := h.service.Create(c.UserContext(), Input{
		UserID: userID, ServiceID: req.ServiceID, MaidID: req.MaidID, Date: req.Date, Time: req.Time,
		Duration: req.Duration, Address: req.Address, Coupon: req.Coupon, Contact: contactOf(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrInvalidCoupon):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrServiceNotFound), errors.Is(err, catalog.ErrMaidNotFound), errors.Is(err, ErrUnavailable):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toResponse(b))
}

// List returns bookings for ?tab=active|history.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	views, err := h.service.List(c.UserContext(), userID, Tab(c.Query("tab")))
	if err != nil {
		if errors.Is(err, ErrInvalidTab) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]bookingResponse, 0, len(views))
	for _, v := range views {
		resp := toResponse(v.Booking)
		if v.Service != nil {
			resp.Service = fiber.Map{"name": v.Service.Name, "image": v.Service.Image, "price": v.Service.Price.InexactFloat64()}
		}
		if v.Maid != nil {
			resp.Maid = fiber.Map{"name": v.Maid.Name, "image": v.Maid.Image, "rating": v.Maid.Rating}
		}
		out = append(out, resp)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"bookings": out})
}

// Cancel cancels one booking.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.Cancel(c.UserContext(), userID, c.Params("id"), contactOf(c)); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotCancellable):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}
