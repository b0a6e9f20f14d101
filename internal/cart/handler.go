package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/session"
	"github.com/jusastore/store-backend/internal/validation"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/cart", h.getCart)
	app.Post("/api/cart", h.addToCart)
	app.Delete("/api/cart", h.clearCart)
	app.Put("/api/cart/:productId", h.updateItem)
	app.Delete("/api/cart/:productId", h.removeItem)
}

type variantRequest struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

type quantityRequest struct {
	variantRequest
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	payload := new(AddItem)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}
	if err := validation.Struct(payload); err != nil {
		return err
	}

	view, err := h.service.Add(c.UserContext(), userID, *payload)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	view, err := h.service.SetQuantity(c.UserContext(), userID, c.Params("productId"),
		payload.Color, payload.Size, payload.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// removeItem takes color and size from the body, or from the query string
// when the client sends no body.
func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	payload := variantRequest{Color: c.Query("color"), Size: c.Query("size")}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apperr.InvalidArgument(err.Error())
		}
	}

	view, err := h.service.Remove(c.UserContext(), userID, c.Params("productId"), payload.Color, payload.Size)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Clear(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Cart cleared", "cart": view})
}
