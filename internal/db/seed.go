package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

// Demo is the sample catalog loaded by `storefront seed` and by the memory
// driver at startup.
type Demo struct {
	Categories []product.Category
	Products   []product.Product
	Coupons    []order.Coupon
}

var seedNS = uuid.MustParse("6f1c3a52-8d0e-4f61-9a3b-2c7d5e8f9a10")

// stableID keeps ids identical across runs so re-seeding is a no-op.
func stableID(kind, key string) string {
	return uuid.NewSHA1(seedNS, []byte(kind+":"+key)).String()
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

type seedProduct struct {
	name, category, description, price, original string
	featured, isNew                               bool
	stock                                         int
}

var seedCategories = [][2]string{
	{"Rings", "Elegant rings for every occasion"},
	{"Necklaces", "Beautiful necklaces that make a statement"},
	{"Earrings", "Stunning earrings to complete your look"},
	{"Bracelets", "Exquisite bracelets for any style"},
	{"Beauty Products", "Premium beauty and skincare products"},
}

var seedProducts = []seedProduct{
	{"Diamond Solitaire Ring", "Rings", "Timeless diamond solitaire ring crafted in 18K gold.", "2499.99", "3299.99", true, false, 5},
	{"Emerald and Gold Ring", "Rings", "Emerald gemstone set in gold with intricate detailing.", "1899.99", "2299.99", true, true, 8},
	{"Sapphire Engagement Ring", "Rings", "Sapphire center stone with diamond accents.", "2199.99", "", false, true, 3},
	{"Gold Pearl Pendant", "Necklaces", "Pearl pendant on a delicate gold chain.", "899.99", "1199.99", true, false, 12},
	{"Crystal Charm Necklace", "Necklaces", "Crystal charm on a fine gold chain.", "599.99", "", false, true, 15},
	{"Diamond Tennis Necklace", "Necklaces", "Classic tennis necklace with brilliant diamonds.", "3999.99", "4999.99", true, false, 2},
	{"Diamond Stud Earrings", "Earrings", "Diamond studs that sparkle with every move.", "1499.99", "1999.99", true, false, 10},
	{"Pearl Drop Earrings", "Earrings", "Pearl drop earrings with gold accents.", "699.99", "", false, true, 8},
	{"Rose Gold Chandelier Earrings", "Earrings", "Rose gold chandelier earrings with intricate details.", "899.99", "1199.99", false, true, 6},
	{"Diamond Tennis Bracelet", "Bracelets", "Diamond tennis bracelet for the wrist.", "2999.99", "3999.99", true, false, 4},
	{"Gold Bangle Bracelet", "Bracelets", "Classic gold bangle with elegant details.", "799.99", "", false, true, 20},
	{"Sapphire and Diamond Bracelet", "Bracelets", "Sapphires and diamonds in one bracelet.", "2499.99", "3199.99", true, true, 5},
	{"Luxury Face Serum", "Beauty Products", "Anti-aging face serum with gold particles.", "129.99", "179.99", false, true, 50},
	{"Hydrating Face Cream", "Beauty Products", "Moisturizing cream infused with minerals and gold.", "99.99", "", true, false, 60},
}

// DemoData builds the sample catalog. now anchors the coupon's validity window.
func DemoData(now time.Time) Demo {
	var d Demo
	catIDs := map[string]string{}
	for _, c := range seedCategories {
		cat := product.Category{ID: stableID("category", c[0]), Slug: slugify(c[0]), Name: c[0], Description: c[1]}
		catIDs[c[0]] = cat.ID
		d.Categories = append(d.Categories, cat)
	}
	for _, sp := range seedProducts {
		p := product.Product{
			ID:          stableID("product", sp.name),
			Slug:        slugify(sp.name),
			Name:        sp.name,
			Description: sp.description,
			CategoryID:  catIDs[sp.category],
			Price:       decimal.RequireFromString(sp.price),
			Stock:       sp.stock,
			Featured:    sp.featured,
			New:         sp.isNew,
		}
		if sp.original != "" {
			orig := decimal.RequireFromString(sp.original)
			p.OriginalPrice = &orig
		}
		d.Products = append(d.Products, p)
	}
	d.Coupons = []order.Coupon{{
		ID:              stableID("coupon", "WELCOME10"),
		Code:            "WELCOME10",
		DiscountPercent: decimal.NewFromInt(10),
		ValidFrom:       now.AddDate(0, 0, -1),
		ValidTo:         now.AddDate(1, 0, 0),
		Active:          true,
	}}
	return d
}

// Seed inserts the demo catalog, skipping rows that already exist.
func Seed(ctx context.Context, pool *pgxpool.Pool, d Demo) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range d.Categories {
		if _, err := tx.Exec(ctx, `
			INSERT INTO categories (id, slug, name, description) VALUES ($1,$2,$3,$4)
			ON CONFLICT DO NOTHING
		`, c.ID, c.Slug, c.Name, c.Description); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	for _, p := range d.Products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, slug, name, description, category_id, price, original_price, stock,
				is_featured, is_new, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
			ON CONFLICT DO NOTHING
		`, p.ID, p.Slug, p.Name, p.Description, p.CategoryID, p.Price, p.OriginalPrice, p.Stock,
			p.Featured, p.New); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Name, err)
		}
	}
	for _, c := range d.Coupons {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupons (id, code, discount_percent, valid_from, valid_to, active, min_order_amount, usage_limit)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT DO NOTHING
		`, c.ID, c.Code, c.DiscountPercent, c.ValidFrom, c.ValidTo, c.Active, c.MinOrderAmount, c.UsageLimit); err != nil {
			return fmt.Errorf("seed coupon %s: %w", c.Code, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("demo catalog seeded",
		"categories", len(d.Categories), "products", len(d.Products), "coupons", len(d.Coupons))
	return nil
}
