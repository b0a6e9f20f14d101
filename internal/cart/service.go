package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jusastore/store-backend/internal/product"
	"github.com/shopspring/decimal"
)

// Catalog resolves product ids to their current entries.
type Catalog interface {
	Lookup(ctx context.Context, ids []string) (map[string]product.Product, error)
}

// AddItem is the payload for adding a product to the cart. A nil Quantity
// means one.
type AddItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// Service orchestrates cart operations.
type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// Get returns the caller's cart with products resolved. A user without a cart
// gets an empty view.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return emptyView(), nil
	}
	if err != nil {
		return View{}, err
	}
	products, err := s.resolve(ctx, c.Items)
	if err != nil {
		return View{}, err
	}
	c.Total = total(c.Items, products)
	return buildView(c, products), nil
}

func (s *Service) Add(ctx context.Context, userID string, in AddItem) (View, error) {
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if err := checkQuantity(qty); err != nil {
		return View{}, err
	}
	color, size := normalizeVariant(in.Color), normalizeVariant(in.Size)

	found, err := s.catalog.Lookup(ctx, []string{in.ProductID})
	if err != nil {
		return View{}, err
	}
	if _, ok := found[in.ProductID]; !ok {
		return View{}, product.ErrNotFound
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return View{}, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].matches(in.ProductID, color, size) {
			if c.Items[i].Quantity > MaxQuantity-qty {
				return View{}, ErrQuantityLimit
			}
			c.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, LineItem{ProductID: in.ProductID, Quantity: qty, Color: color, Size: size})
	}
	return s.save(ctx, c)
}

// SetQuantity replaces the quantity of an existing line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID, color, size string, qty int) (View, error) {
	if err := checkQuantity(qty); err != nil {
		return View{}, err
	}
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}

	color, size = normalizeVariant(color), normalizeVariant(size)
	for i := range c.Items {
		if c.Items[i].matches(productID, color, size) {
			c.Items[i].Quantity = qty
			return s.save(ctx, c)
		}
	}
	return View{}, ErrItemNotFound
}

// Remove deletes a line. Removing something that is not there is not an error.
func (s *Service) Remove(ctx context.Context, userID, productID, color, size string) (View, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return emptyView(), nil
	}
	if err != nil {
		return View{}, err
	}

	color, size = normalizeVariant(color), normalizeVariant(size)
	kept := c.Items[:0]
	for _, it := range c.Items {
		if !it.matches(productID, color, size) {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return s.save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, userID string) (View, error) {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return View{}, err
	}
	return s.Get(ctx, userID)
}

func checkQuantity(qty int) error {
	switch {
	case qty < 1:
		return ErrInvalidQuantity
	case qty > MaxQuantity:
		return ErrQuantityLimit
	}
	return nil
}

func (s *Service) load(ctx context.Context, userID string) (Cart, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Cart{UserID: userID, Items: []LineItem{}}, nil
	}
	return c, err
}

// save recomputes the total from current prices and persists the cart.
func (s *Service) save(ctx context.Context, c Cart) (View, error) {
	products, err := s.resolve(ctx, c.Items)
	if err != nil {
		return View{}, err
	}
	c.Total = total(c.Items, products)
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, c); err != nil {
		return View{}, err
	}
	return buildView(c, products), nil
}

func (s *Service) resolve(ctx context.Context, items []LineItem) (map[string]product.Product, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return s.catalog.Lookup(ctx, ids)
}

// total prices every line at the current catalog price. Lines whose product
// is gone count as zero.
func total(items []LineItem, products map[string]product.Product) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		sum = sum.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

func buildView(c Cart, products map[string]product.Product) View {
	items := make([]ItemView, 0, len(c.Items))
	for _, it := range c.Items {
		v := ItemView{LineItem: it}
		if p, ok := products[it.ProductID]; ok {
			v.Product = &p
		}
		items = append(items, v)
	}
	updated := c.UpdatedAt
	return View{UserID: c.UserID, Items: items, Total: c.Total, UpdatedAt: &updated}
}

func emptyView() View {
	return View{Items: []ItemView{}, Total: decimal.Zero}
}
