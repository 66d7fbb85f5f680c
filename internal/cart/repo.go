package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrOutOfStock      = errors.New("product is out of stock")
)

type Repository interface {
	// Lines returns the owner's cart joined with current product data.
	Lines(ctx context.Context, userID string) ([]Line, error)
	GetLine(ctx context.Context, userID, lineID string) (*Line, error)
	FindLine(ctx context.Context, userID, productID string) (*Line, error)
	InsertLine(ctx context.Context, l *Line) error
	SetQuantity(ctx context.Context, lineID string, quantity int) error
	DeleteLine(ctx context.Context, userID, lineID string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const lineSelect = `
	SELECT c.id, c.user_id, c.product_id, c.quantity, c.added_at, c.updated_at,
	       p.id, p.slug, p.name, p.price, p.stock
	FROM cart_items c JOIN products p ON p.id = c.product_id`

type rowScanner interface{ Scan(dest ...any) error }

func scanLine(row rowScanner) (*Line, error) {
	var l Line
	if err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.AddedAt, &l.UpdatedAt,
		&l.Product.ID, &l.Product.Slug, &l.Product.Name, &l.Product.Price, &l.Product.Stock); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PGRepo) Lines(ctx context.Context, userID string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, lineSelect+` WHERE c.user_id=$1 ORDER BY c.added_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetLine(ctx context.Context, userID, lineID string) (*Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	l, err := scanLine(r.db.QueryRow(ctx, lineSelect+` WHERE c.user_id=$1 AND c.id=$2`, userID, lineID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *PGRepo) FindLine(ctx context.Context, userID, productID string) (*Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	l, err := scanLine(r.db.QueryRow(ctx, lineSelect+` WHERE c.user_id=$1 AND c.product_id=$2`, userID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *PGRepo) InsertLine(ctx context.Context, l *Line) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// UNIQUE (user_id, product_id): a concurrent add for the same pair merges.
	return r.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, added_at, updated_at
	`, l.ID, l.UserID, l.ProductID, l.Quantity).Scan(&l.ID, &l.AddedAt, &l.UpdatedAt)
}

func (r *PGRepo) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity=$2, updated_at=NOW() WHERE id=$1`, lineID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteLine(ctx context.Context, userID, lineID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND id=$2`, userID, lineID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
