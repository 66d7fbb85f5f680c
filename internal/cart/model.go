package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/joyeria-ecom/internal/money"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

// Line is one (owner, product) pair in a cart. Product is loaded with the line
// so totals and checkout see the live catalog price.
type Line struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   product.Product `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Items    int             `json:"items"`
}

// Subtotal sums price x quantity over the lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// ComputeTotals applies a display tax rate to the lines' subtotal.
func ComputeTotals(lines []Line, taxRate decimal.Decimal) Totals {
	sub := Subtotal(lines)
	tax := money.Round(sub.Mul(taxRate))
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return Totals{Subtotal: sub, Tax: tax, Total: sub.Add(tax), Items: n}
}

// AddItemRequest payload for add-to-cart.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"1"`
}

// UpdateItemRequest payload for a quantity change.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Quantity int `json:"quantity" example:"2"`
}

// View is what GET /cart returns.
// swagger:model CartView
type View struct {
	Lines  []Line `json:"lines"`
	Totals Totals `json:"totals"`
}
