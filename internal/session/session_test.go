package session

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jusastore/store-backend/internal/apperr"
)

const testSecret = "test-secret"

func makeProtectedApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Use(Middleware(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestMiddleware_ValidToken(t *testing.T) {
	tok, err := NewIssuer(testSecret, time.Hour).Issue("u-1", "a@b.co")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	status, body := doGet(t, makeProtectedApp(), "Bearer "+tok)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(body, `"id":"u-1"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	status, body := doGet(t, makeProtectedApp(), "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if !strings.Contains(body, "Access denied. No token provided.") {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestMiddleware_RejectsBadTokens(t *testing.T) {
	expired := &Issuer{secret: []byte(testSecret), ttl: time.Hour, now: func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}}
	expiredTok, _ := expired.Issue("u-1", "a@b.co")
	forged, _ := NewIssuer("other-secret", time.Hour).Issue("u-1", "a@b.co")

	for name, auth := range map[string]string{
		"garbage": "Bearer not-a-jwt",
		"expired": "Bearer " + expiredTok,
		"forged":  "Bearer " + forged,
	} {
		t.Run(name, func(t *testing.T) {
			status, body := doGet(t, makeProtectedApp(), auth)
			if status != fiber.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", status)
			}
			if !strings.Contains(body, "Invalid Token") {
				t.Fatalf("unexpected body %s", body)
			}
		})
	}
}

func TestUserID_FromLocals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Get("/", func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals(ContextKey, &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.SendString(id)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-User-ID", "abc")
	res, _ := app.Test(req)
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || string(b) != "abc" {
		t.Fatalf("expected abc, got %d %s", res.StatusCode, string(b))
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	if res2.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", res2.StatusCode)
	}
}
