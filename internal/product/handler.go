package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jusastore/store-backend/internal/apperr"
)

var ErrBulkDisabled = apperr.PermissionDenied("Bulk import is not allowed")

type Handler struct {
	service   *Service
	allowBulk bool
}

// NewHandler wires the catalog routes. allowBulk enables the catalog
// replacement endpoint.
func NewHandler(service *Service, allowBulk bool) *Handler {
	return &Handler{service: service, allowBulk: allowBulk}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/products", h.getProducts)
	app.Get("/api/products/search", h.searchProducts)
	app.Get("/api/product/:id", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/products", h.createProduct)
	app.Post("/api/products/bulk", h.bulkReplace)
	app.Put("/api/products/:id", h.updateProduct)
	app.Delete("/api/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), Filter{
		Category: c.Query("category"),
		Sale:     c.QueryBool("sale"),
		New:      c.QueryBool("new"),
	})
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) searchProducts(c *fiber.Ctx) error {
	products, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	created, err := h.service.Create(c.UserContext(), *p)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	updated, err := h.service.Update(c.UserContext(), c.Params("id"), *p)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// bulkReplace clears the catalog and inserts the posted list.
func (h *Handler) bulkReplace(c *fiber.Ctx) error {
	if !h.allowBulk {
		return ErrBulkDisabled
	}

	var products []Product
	if err := c.BodyParser(&products); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	saved, err := h.service.Replace(c.UserContext(), products)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Products imported",
		"count":    len(saved),
		"products": saved,
	})
}
