package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WishlistRepository interface {
	// Toggle adds the product when absent and removes it when present,
	// returning whether it is in the wishlist afterwards.
	Toggle(ctx context.Context, userID, productID string) (bool, error)
	Wishlist(ctx context.Context, userID string) ([]Product, error)
}

type PGWishlistRepo struct{ db *pgxpool.Pool }

func NewPGWishlistRepo(db *pgxpool.Pool) *PGWishlistRepo { return &PGWishlistRepo{db: db} }

func (r *PGWishlistRepo) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	if _, err := r.db.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, product_id, added_at) VALUES ($1,$2,NOW())
		ON CONFLICT DO NOTHING
	`, userID, productID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, err
	}
	return true, nil
}

func (r *PGWishlistRepo) Wishlist(ctx context.Context, userID string) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM wishlist_items w JOIN products p ON p.id = w.product_id
		WHERE w.user_id=$1
		ORDER BY w.added_at DESC
	`, userID)
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
