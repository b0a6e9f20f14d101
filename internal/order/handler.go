package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/session"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/orders", h.createOrder)
	app.Get("/api/orders", h.getOrders)
	app.Get("/api/orders/:id", h.getOrder)
	app.Put("/api/orders/:id/cancel", h.cancelOrder)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	payload := new(CheckoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	created, err := h.service.Checkout(c.UserContext(), userID, *payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// getOrders returns all orders belonging to the currently authenticated user.
func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	orders, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	o, err := h.service.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(o)
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	o, err := h.service.Cancel(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Order cancelled", "order": o})
}
