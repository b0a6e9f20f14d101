package cart

import (
	"time"

	"github.com/jusastore/store-backend/internal/product"
	"github.com/shopspring/decimal"
)

// DefaultVariant is used for color and size when the client omits them.
const DefaultVariant = "default"

// MaxQuantity caps a single cart line.
const MaxQuantity = 999

// LineItem is one (product, color, size) entry in a cart.
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

func (li LineItem) matches(productID, color, size string) bool {
	return li.ProductID == productID && li.Color == color && li.Size == size
}

// Cart is the stored document. Total is derived and recomputed on every write.
type Cart struct {
	UserID    string          `json:"userId"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c Cart) clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

// ItemView is a line with its current catalog entry. Product is nil when the
// product no longer exists.
type ItemView struct {
	LineItem
	Product *product.Product `json:"product,omitempty"`
}

type View struct {
	UserID    string          `json:"userId,omitempty"`
	Items     []ItemView      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

func normalizeVariant(v string) string {
	if v == "" {
		return DefaultVariant
	}
	return v
}
