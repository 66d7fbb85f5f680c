package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrReviewExists  = errors.New("review already exists")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewRequest payload for a new review.
// swagger:model CreateReviewRequest
type CreateReviewRequest struct {
	Rating  int    `json:"rating"  example:"5"`
	Comment string `json:"comment" example:"Beautiful ring"`
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, r *Review) error
	ListApproved(ctx context.Context, productID string) ([]Review, error)
	Approve(ctx context.Context, id string) (*Review, error)
}

// AverageRating over the given reviews, 0 when there are none.
func AverageRating(rs []Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return float64(sum) / float64(len(rs))
}

type PGReviewRepo struct{ db *pgxpool.Pool }

func NewPGReviewRepo(db *pgxpool.Pool) *PGReviewRepo { return &PGReviewRepo{db: db} }

func (r *PGReviewRepo) CreateReview(ctx context.Context, rv *Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, approved, created_at)
		VALUES ($1,$2,$3,$4,$5,false,NOW())
		RETURNING created_at
	`, rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment).Scan(&rv.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrReviewExists
	}
	return err
}

func (r *PGReviewRepo) ListApproved(ctx context.Context, productID string) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, user_id, rating, comment, approved, created_at
		FROM reviews WHERE product_id=$1 AND approved
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.Approved, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *PGReviewRepo) Approve(ctx context.Context, id string) (*Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rv Review
	err := r.db.QueryRow(ctx, `
		UPDATE reviews SET approved = true WHERE id=$1
		RETURNING id, product_id, user_id, rating, comment, approved, created_at
	`, id).Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.Approved, &rv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
