package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/joyeria-ecom/internal/money"
)

var ErrCouponNotFound = errors.New("coupon not found")

type Coupon struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	ValidFrom       time.Time        `json:"valid_from"`
	ValidTo         time.Time        `json:"valid_to"`
	Active          bool             `json:"active"`
	MinOrderAmount  *decimal.Decimal `json:"min_order_amount,omitempty"`
	UsageLimit      *int             `json:"usage_limit,omitempty"`
	UsedCount       int              `json:"used_count"`
}

// ValidAt checks the coupon's own window, active flag and usage limit.
func (c Coupon) ValidAt(now time.Time) bool {
	if !c.Active || now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return false
	}
	return c.UsageLimit == nil || c.UsedCount < *c.UsageLimit
}

// Applies adds the minimum-order check on top of ValidAt.
func (c Coupon) Applies(subtotal decimal.Decimal, now time.Time) bool {
	if !c.ValidAt(now) {
		return false
	}
	return c.MinOrderAmount == nil || subtotal.GreaterThanOrEqual(*c.MinOrderAmount)
}

// Discount is subtotal * percent / 100, rounded half-up to cents.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	return money.Percent(subtotal, c.DiscountPercent)
}

type CouponRepository interface {
	// GetByCode matches case-insensitively.
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	IncrementUsage(ctx context.Context, id string) error
}

type PGCouponRepo struct{ db *pgxpool.Pool }

func NewPGCouponRepo(db *pgxpool.Pool) *PGCouponRepo { return &PGCouponRepo{db: db} }

func (r *PGCouponRepo) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Coupon
	err := r.db.QueryRow(ctx, `
		SELECT id, code, discount_percent, valid_from, valid_to, active, min_order_amount, usage_limit, used_count
		FROM coupons WHERE lower(code) = lower($1)
	`, code).Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.ValidFrom, &c.ValidTo, &c.Active,
		&c.MinOrderAmount, &c.UsageLimit, &c.UsedCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGCouponRepo) IncrementUsage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE coupons SET used_count = used_count + 1 WHERE id=$1`, id)
	return err
}
