// Package session issues and verifies the signed bearer tokens that identify
// a signed-in user on protected routes.
package session

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jusastore/store-backend/internal/apperr"
)

// ContextKey is where the verified *jwt.Token is stored in c.Locals.
const ContextKey = "user"

var (
	ErrNoToken      = apperr.Unauthenticated("Access denied. No token provided.")
	ErrInvalidToken = apperr.Unauthenticated("Invalid Token")
)

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for the given user.
func (i *Issuer) Issue(userID, email string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     now.Unix(),
		"exp":     now.Add(i.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", apperr.Wrap(err, "sign token")
	}
	return signed, nil
}

// Middleware rejects requests without a valid bearer token. A missing header
// and a bad token are both 401 with different messages.
func Middleware(secret string) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrInvalidToken
		},
	})

	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
			return ErrNoToken
		}
		return verify(c)
	}
}

// UserID returns the id of the signed-in caller.
func UserID(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return "", ErrNoToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	id, _ := claims["user_id"].(string)
	if id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}
