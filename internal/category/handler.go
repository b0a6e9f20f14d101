package category

import (
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterPublicRoutes mounts the collection index plus one listing route
// per collection.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/categories", h.getCategories)
	for _, c := range h.service.List(0) {
		app.Get("/api/"+c.Slug, h.collectionProducts(c.Slug))
	}
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items := h.service.List(c.QueryInt("limit", 0))
	return c.JSON(items)
}

func (h *Handler) collectionProducts(slug string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := h.service.Products(c.UserContext(), slug)
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}
