package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is in the store currency with two
// decimal places.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	IsSale      bool            `json:"isSale"`
	IsNew       bool            `json:"isNew"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	Category string
	Sale     bool
	New      bool
}

func (f Filter) matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Sale && !p.IsSale {
		return false
	}
	if f.New && !p.IsNew {
		return false
	}
	return true
}
