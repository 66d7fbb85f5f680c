package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"category_id"`
	// NUMERIC(10,2) in Postgres, never float
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock"`
	Featured      bool             `json:"is_featured"`
	New           bool             `json:"is_new"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DiscountPercentage is the whole-number markdown against OriginalPrice, 0 when
// the product is not on sale.
func (p Product) DiscountPercentage() int {
	if p.OriginalPrice == nil || !p.OriginalPrice.IsPositive() {
		return 0
	}
	orig := *p.OriginalPrice
	return int(orig.Sub(p.Price).Div(orig).Mul(decimal.NewFromInt(100)).IntPart())
}

// Valid checks the catalog invariants: positive price, non-negative stock.
func (p Product) Valid() bool {
	return p.Name != "" && p.Price.IsPositive() && p.Stock >= 0
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q        string    `json:"q,omitempty"`
	Category string    `json:"category,omitempty"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	Items    []Product `json:"items"`
}
