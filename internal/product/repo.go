// Package product provides the catalog repository interface and its PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price_low"
	SortPriceHigh Sort = "price_high"
)

type Query struct {
	Q            string
	CategorySlug string
	FeaturedOnly bool
	NewOnly      bool
	Sort         Sort
	Limit        int
	Offset       int
}

// Normalize clamps paging the same way every implementation does.
func (q Query) Normalize() Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `p.id, p.slug, p.name, p.description, COALESCE(p.category_id::text, ''),
	p.price, p.original_price, p.stock, p.is_featured, p.is_new, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.CategoryID,
		&p.Price, &p.OriginalPrice, &p.Stock, &p.Featured, &p.New, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productCols+` FROM products p WHERE p.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productCols+` FROM products p WHERE p.slug=$1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	order := "p.created_at DESC"
	switch q.Sort {
	case SortPriceLow:
		order = "p.price ASC"
	case SortPriceHigh:
		order = "p.price DESC"
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ($1 = '' OR p.name ILIKE '%'||$1||'%' OR p.description ILIKE '%'||$1||'%' OR c.name ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.slug = $2)
		  AND (NOT $3 OR p.is_featured)
		  AND (NOT $4 OR p.is_new)
		ORDER BY `+order+`
		LIMIT $5 OFFSET $6
	`, q.Q, q.CategorySlug, q.FeaturedOnly, q.NewOnly, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, slug, name, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
