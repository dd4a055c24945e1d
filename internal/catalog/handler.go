package catalog

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes catalog endpoints.
type Handler struct {
	catalog *Catalog
}

// NewHandler constructs a catalog handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

type serviceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Duration    int     `json:"duration"`
	IsActive    bool    `json:"is_active"`
}

type maidResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Image        string   `json:"image"`
	Rating       float64  `json:"rating"`
	ReviewsCount int      `json:"reviews_count"`
	Skills       []string `json:"skills"`
	PricePerHour float64  `json:"price_per_hour"`
	Verified     bool     `json:"verified"`
}

// Services lists services. ?category= filters, ?active=true limits to active ones.
func (h *Handler) Services(c *fiber.Ctx) error {
	services, err := h.catalog.Services(c.UserContext(), c.Query("category"), c.QueryBool("active", false))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, serviceResponse{
			ID: s.ID, Name: s.Name, Description: s.Description, Price: s.Price.InexactFloat64(),
			Image: s.Image, Category: s.Category, Duration: s.Duration, IsActive: s.IsActive,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"services": out})
}

// Maids lists maids for ?category=, or the top rated ones without it.
func (h *Handler) Maids(c *fiber.Ctx) error {
	var (
		maids []Maid
		err   error
	)
	if category := c.Query("category"); category != "" {
		maids, err = h.catalog.MaidsForCategory(c.UserContext(), category)
	} else {
		maids, err = h.catalog.TopMaids(c.UserContext())
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]maidResponse, 0, len(maids))
	for _, m := range maids {
		skills := m.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, maidResponse{
			ID: m.ID, Name: m.Name, Image: m.Image, Rating: m.Rating, ReviewsCount: m.ReviewsCount,
			Skills: skills, PricePerHour: m.PricePerHour.InexactFloat64(), Verified: m.Verified,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"maids": out})
}
