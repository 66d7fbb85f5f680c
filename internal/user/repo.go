package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, id string) (bool, error)

	SaveProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_staff, created_at, updated_at)
		VALUES ($1,$2,lower($3),$4,$5,NOW(),NOW())
		RETURNING email, created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Staff).Scan(&u.Email, &u.CreatedAt, &u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExist
	}
	return err
}

const userCols = `id, username, email, password_hash, is_staff, created_at, updated_at`

func (r *PGRepo) get(ctx context.Context, where string, arg string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Staff, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `id::text=$1`, id)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `email=lower($1)`, email)
}

// Delete removes the account. Orders keep existing with a NULL owner.
func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id::text=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) SaveProfile(ctx context.Context, p *Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (user_id, phone, address, city, state, postal_code, country)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id) DO UPDATE SET
			phone = EXCLUDED.phone, address = EXCLUDED.address, city = EXCLUDED.city,
			state = EXCLUDED.state, postal_code = EXCLUDED.postal_code, country = EXCLUDED.country
	`, p.UserID, p.Phone, p.Address, p.City, p.State, p.PostalCode, p.Country)
	return err
}

func (r *PGRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT user_id, phone, address, city, state, postal_code, country
		FROM profiles WHERE user_id::text=$1
	`, userID).Scan(&p.UserID, &p.Phone, &p.Address, &p.City, &p.State, &p.PostalCode, &p.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
