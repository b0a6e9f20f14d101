package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/identity"
	"github.com/jusastore/store-backend/internal/session"
)

// TokenIssuer signs session tokens for a signed-in user.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type Handler struct {
	service  *Service
	tokens   TokenIssuer
	identity identity.Verifier
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleAuthRequest struct {
	IDToken     string `json:"idToken"`
	DisplayName string `json:"displayName"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func NewHandler(service *Service, tokens TokenIssuer, verifier identity.Verifier) *Handler {
	return &Handler{service: service, tokens: tokens, identity: verifier}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/user/register", h.register)
	app.Post("/api/user/signin", h.signin)
	app.Post("/api/user/google-auth", h.googleAuth)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Put("/api/user/change-password", h.changePassword)
	app.Get("/api/user/:id", h.getUser)
	app.Put("/api/user/update/:id", h.updateUser)
	app.Put("/api/user/update-address/:id", h.updateAddress)
	app.Put("/api/user/update-payment/:id", h.updatePayment)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(Registration)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, fiber.StatusCreated, created, "User registered successfully")
}

func (h *Handler) signin(c *fiber.Ctx) error {
	payload := new(signinRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	user, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, fiber.StatusOK, user, "Login successful")
}

func (h *Handler) googleAuth(c *fiber.Ctx) error {
	payload := new(googleAuthRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	id, err := h.identity.Verify(c.UserContext(), payload.IDToken)
	if err != nil {
		return err
	}
	name := payload.DisplayName
	if name == "" {
		name = id.Name
	}

	user, err := h.service.SignInExternal(c.UserContext(), id.Email, name)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, fiber.StatusOK, user, "Login successful")
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, user User, message string) error {
	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"token":   token,
		"id":      user.ID,
	})
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := ownID(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	id, err := ownID(c)
	if err != nil {
		return err
	}
	payload := new(Details)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	updated, err := h.service.UpdateDetails(c.UserContext(), id, *payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": updated})
}

func (h *Handler) changePassword(c *fiber.Ctx) error {
	id, err := session.UserID(c)
	if err != nil {
		return err
	}
	payload := new(changePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	if err := h.service.ChangePassword(c.UserContext(), id, payload.CurrentPassword, payload.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	id, err := ownID(c)
	if err != nil {
		return err
	}
	payload := new(Address)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	updated, err := h.service.UpdateAddress(c.UserContext(), id, *payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Address updated successfully", "user": updated})
}

func (h *Handler) updatePayment(c *fiber.Ctx) error {
	id, err := ownID(c)
	if err != nil {
		return err
	}
	payload := new(PaymentDetails)
	if err := c.BodyParser(payload); err != nil {
		return apperr.InvalidArgument(err.Error())
	}

	updated, err := h.service.UpdatePayment(c.UserContext(), id, *payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Payment details updated successfully", "user": updated})
}

// ownID returns the :id path parameter once it is known to be well formed
// and to belong to the caller.
func ownID(c *fiber.Ctx) (string, error) {
	caller, err := session.UserID(c)
	if err != nil {
		return "", err
	}
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidID
	}
	if id != caller {
		return "", ErrForbidden
	}
	return id, nil
}
