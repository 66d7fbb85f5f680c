package order

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

const PaymentMethodStripe = "stripe"

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable is true only before fulfillment starts.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) String() string { return string(s) }

// CanTransition reports whether from -> to is an edge of the order lifecycle.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Shipping struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Normalize trims every field.
func (s Shipping) Normalize() Shipping {
	for _, f := range []*string{&s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Address,
		&s.City, &s.State, &s.PostalCode, &s.Country} {
		*f = strings.TrimSpace(*f)
	}
	return s
}

// Validate reports the first missing or malformed field as ErrInvalidShipping.
func (s Shipping) Validate() error {
	required := []struct{ name, v string }{
		{"first_name", s.FirstName},
		{"email", s.Email},
		{"address", s.Address},
		{"city", s.City},
		{"postal_code", s.PostalCode},
		{"country", s.Country},
	}
	for _, r := range required {
		if r.v == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidShipping, r.name)
		}
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidShipping)
	}
	return nil
}

func (s Shipping) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type Order struct {
	ID     string  `json:"id"`
	Number string  `json:"order_number"`
	UserID *string `json:"user_id,omitempty"` // nil once the account is deleted
	Shipping
	// Fixed at creation from the cart snapshot; never recomputed.
	Total         decimal.Decimal `json:"total_price"`
	Discount      decimal.Decimal `json:"discount"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	Status        Status          `json:"status"`
	Paid          bool            `json:"paid"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OwnedBy reports whether userID owns the order. Orphaned orders have no owner.
func (o Order) OwnedBy(userID string) bool {
	return o.UserID != nil && userID != "" && *o.UserID == userID
}

type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   *string         `json:"product_id,omitempty"` // nil once the product is deleted
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"` // unit price snapshot
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StockLevel is a product's stock after a confirmation decremented it.
type StockLevel struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// Confirmation is what the store returns after marking an order paid.
type Confirmation struct {
	Order Order
	Items []Item
	Stock []StockLevel
}
