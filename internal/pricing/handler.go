package pricing

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes quote and coupon endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a pricing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type quoteRequest struct {
	Service  string `json:"service" validate:"required"`
	Duration int    `json:"duration" validate:"required,min=1,max=12"`
	Coupon   string `json:"coupon"`
}

type quoteResponse struct {
	Service      string  `json:"service"`
	Duration     int     `json:"duration"`
	BasePrice    float64 `json:"base_price"`
	DurationCost float64 `json:"duration_cost"`
	Discount     float64 `json:"discount"`
	Total        float64 `json:"total"`
	Coupon       string  `json:"coupon,omitempty"`
	CouponValid  *bool   `json:"coupon_valid,omitempty"`
}

// toResponse renders a quote for the client.
func toResponse(q Quote) quoteResponse {
	return quoteResponse{
		Service:      q.Service,
		Duration:     q.Duration,
		BasePrice:    q.Base.InexactFloat64(),
		DurationCost: q.DurationCost.InexactFloat64(),
		Discount:     q.Discount.InexactFloat64(),
		Total:        q.Total.InexactFloat64(),
		Coupon:       q.Coupon,
	}
}

func (h *Handler) parse(c *fiber.Ctx) (quoteRequest, error) {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return req, nil
}

// Quote prices a selection. An unknown coupon still returns the undiscounted quote.
func (h *Handler) Quote(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	q, err := h.service.Quote(c.UserContext(), QuoteInput{Service: req.Service, Duration: req.Duration, Coupon: req.Coupon})
	resp := toResponse(q)
	if req.Coupon != "" {
		valid := err == nil
		resp.CouponValid = &valid
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// ApplyCoupon validates a coupon against a selection.
func (h *Handler) ApplyCoupon(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	owner, _ := c.Locals("device_id").(string)
	q, err := h.service.ApplyCoupon(c.UserContext(), owner, QuoteInput{Service: req.Service, Duration: req.Duration, Coupon: req.Coupon})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCoupon), errors.Is(err, ErrCouponRequired):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	valid := true
	resp := toResponse(q)
	resp.CouponValid = &valid
	return c.Status(http.StatusOK).JSON(resp)
}
