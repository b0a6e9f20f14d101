package product

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/shopspring/decimal"
)

const (
	dressID  = "0b6c3f8e-3a4f-4a8e-9d57-0a8f3b0c1d01"
	jacketID = "0b6c3f8e-3a4f-4a8e-9d57-0a8f3b0c1d02"
	shirtID  = "0b6c3f8e-3a4f-4a8e-9d57-0a8f3b0c1d03"
)

func seedCatalog() []Product {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		{ID: dressID, Name: "Linen Dress", Brand: "Jusa", Type: "dress", Category: "women", Price: decimal.RequireFromString("49.99"), IsNew: true, CreatedAt: base},
		{ID: jacketID, Name: "Denim Jacket", Brand: "Northway", Type: "jacket", Category: "men", Price: decimal.RequireFromString("80.00"), IsSale: true, CreatedAt: base.Add(time.Hour)},
		{ID: shirtID, Name: "Oxford Shirt", Brand: "Northway", Type: "shirt", Description: "100% cotton", Category: "men", Price: decimal.RequireFromString("35.50"), CreatedAt: base.Add(2 * time.Hour)},
	}
}

func makeProductApp(allowBulk bool) (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(seedCatalog())
	h := NewHandler(NewService(repo), allowBulk)
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app, repo
}

func decodeProducts(t *testing.T, body io.Reader) []Product {
	t.Helper()
	var out []Product
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	return out
}

func TestListProducts_Filters(t *testing.T) {
	app, _ := makeProductApp(false)

	cases := map[string]int{
		"/api/products":                     3,
		"/api/products?category=men":        2,
		"/api/products?category=MEN":        2,
		"/api/products?sale=true":           1,
		"/api/products?new=true":            1,
		"/api/products?category=men&sale=1": 1,
	}
	for url, want := range cases {
		res, err := app.Test(httptest.NewRequest("GET", url, nil))
		if err != nil {
			t.Fatalf("%s: %v", url, err)
		}
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d", url, res.StatusCode)
		}
		if got := len(decodeProducts(t, res.Body)); got != want {
			t.Fatalf("%s: expected %d products, got %d", url, want, got)
		}
	}
}

func TestListProducts_NewestFirst(t *testing.T) {
	app, _ := makeProductApp(false)
	res, _ := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	products := decodeProducts(t, res.Body)
	if products[0].ID != shirtID || products[2].ID != dressID {
		t.Fatalf("unexpected order: %s, %s, %s", products[0].Name, products[1].Name, products[2].Name)
	}
}

func TestSearchProducts(t *testing.T) {
	app, _ := makeProductApp(false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/search?q=northway", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if got := len(decodeProducts(t, res.Body)); got != 2 {
		t.Fatalf("expected 2 matches for brand, got %d", got)
	}

	// literal percent sign must not act as a wildcard
	res2, _ := app.Test(httptest.NewRequest("GET", "/api/products/search?q=100%25", nil))
	if got := len(decodeProducts(t, res2.Body)); got != 1 {
		t.Fatalf("expected 1 match for description, got %d", got)
	}

	res3, _ := app.Test(httptest.NewRequest("GET", "/api/products/search?q=%20%20", nil))
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for blank search, got %d", res3.StatusCode)
	}
	b, _ := io.ReadAll(res3.Body)
	if !strings.Contains(string(b), "Please enter search text") {
		t.Fatalf("unexpected body %s", string(b))
	}
}

func TestGetProduct(t *testing.T) {
	app, _ := makeProductApp(false)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/product/"+dressID, nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"name":"Linen Dress"`) {
		t.Fatalf("unexpected body %s", string(b))
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/product/0b6c3f8e-3a4f-4a8e-9d57-0a8f3b0c1dff", nil))
	if res2.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res2.StatusCode)
	}

	res3, _ := app.Test(httptest.NewRequest("GET", "/api/product/42", nil))
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", res3.StatusCode)
	}
}

func TestCreateUpdateDeleteProduct(t *testing.T) {
	app, repo := makeProductApp(false)

	req := httptest.NewRequest("POST", "/api/products", strings.NewReader(`{"name":"Wool Scarf","price":19.5,"category":"Women","colors":["red"]}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created Product
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ValidID(created.ID) || created.Category != "women" {
		t.Fatalf("unexpected created product %+v", created)
	}

	upd := httptest.NewRequest("PUT", "/api/products/"+created.ID, strings.NewReader(`{"name":"Wool Scarf","price":"15.00","category":"women","isSale":true}`))
	upd.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(upd)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", res2.StatusCode)
	}
	got, _ := repo.GetByID(context.Background(), created.ID)
	if !got.IsSale || !got.Price.Equal(decimal.RequireFromString("15")) || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update not applied: %+v", got)
	}

	res3, _ := app.Test(httptest.NewRequest("DELETE", "/api/products/"+created.ID, nil))
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", res3.StatusCode)
	}
	res4, _ := app.Test(httptest.NewRequest("DELETE", "/api/products/"+created.ID, nil))
	if res4.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", res4.StatusCode)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	app, _ := makeProductApp(false)
	req := httptest.NewRequest("POST", "/api/products", strings.NewReader(`{"name":"  ","price":-1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"name":"name is required"`) || !strings.Contains(string(b), `"price":"price must be >= 0"`) {
		t.Fatalf("expected both field errors, got %s", string(b))
	}
}

func TestBulkReplace(t *testing.T) {
	body := `[{"name":"A","price":1},{"name":"B","price":2}]`

	disabled, _ := makeProductApp(false)
	req := httptest.NewRequest("POST", "/api/products/bulk", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ := disabled.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 when bulk import disabled, got %d", res.StatusCode)
	}

	enabled, repo := makeProductApp(true)
	req2 := httptest.NewRequest("POST", "/api/products/bulk", strings.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := enabled.Test(req2)
	if res2.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res2.StatusCode)
	}
	all, _ := repo.List(context.Background(), Filter{})
	if len(all) != 2 {
		t.Fatalf("expected catalog of 2 after replace, got %d", len(all))
	}
}
