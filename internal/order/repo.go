package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrAlreadyPaid     = errors.New("order already paid")
	ErrDuplicateNumber = errors.New("order number already taken")
)

type Repository interface {
	// Create persists the order and its items and deletes the consumed cart
	// lines in one transaction. A taken order number yields ErrDuplicateNumber.
	Create(ctx context.Context, o *Order, items []Item, cartLineIDs []string) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	// ConfirmPayment marks the order paid and confirmed and decrements stock
	// (floored at 0) while holding the order row lock. ErrAlreadyPaid when a
	// previous confirmation won. A cancelled order is marked paid only.
	ConfirmPayment(ctx context.Context, id, transactionID string) (*Confirmation, error)
	// UpdateStatus moves the order to `to` only if its current status is one of
	// `from`. Returns false when the guard did not match.
	UpdateStatus(ctx context.Context, id string, from []Status, to Status) (bool, error)
	ListSince(ctx context.Context, since time.Time) ([]Order, []Item, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// validID keeps malformed ids (webhook metadata, path params) from reaching
// a uuid column, where they would surface as a storage error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const orderCols = `id, order_number, user_id, first_name, last_name, email, phone, address, city, state,
	postal_code, country, total_price, discount, coupon_code, payment_method, status, paid,
	transaction_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.FirstName, &o.LastName, &o.Email, &o.Phone,
		&o.Address, &o.City, &o.State, &o.PostalCode, &o.Country, &o.Total, &o.Discount, &o.CouponCode,
		&o.PaymentMethod, &status, &o.Paid, &o.TransactionID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item, cartLineIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, user_id, first_name, last_name, email, phone, address, city,
			state, postal_code, country, total_price, discount, coupon_code, payment_method, status, paid,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,false,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.Number, o.UserID, o.FirstName, o.LastName, o.Email, o.Phone, o.Address, o.City,
		o.State, o.PostalCode, o.Country, o.Total, o.Discount, o.CouponCode, o.PaymentMethod,
		string(o.Status)).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, it.ID, o.ID, it.ProductID, it.ProductName, it.Quantity, it.Price); err != nil {
			return err
		}
	}

	if len(cartLineIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, cartLineIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	if !validID(id) {
		return nil, nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	items, err := queryItems(ctx, r.db, `WHERE order_id=$1`, id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, q querier, where string, args ...any) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+`
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) ConfirmPayment(ctx context.Context, id, transactionID string) (*Confirmation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The row lock serializes duplicate webhook deliveries for the same order.
	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.Paid {
		return nil, ErrAlreadyPaid
	}

	// A cancelled order keeps its status and stock; only the capture is recorded.
	next := StatusConfirmed
	if o.Status == StatusCancelled {
		next = StatusCancelled
	}
	if err := tx.QueryRow(ctx, `
		UPDATE orders
		SET paid = true, transaction_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, id, transactionID, string(next)).Scan(&o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Paid = true
	o.TransactionID = &transactionID
	o.Status = next

	items, err := queryItems(ctx, tx, `WHERE order_id=$1`, id)
	if err != nil {
		return nil, err
	}

	conf := &Confirmation{Order: *o, Items: items}
	for _, it := range items {
		if next == StatusCancelled {
			break
		}
		if it.ProductID == nil {
			continue
		}
		var lvl StockLevel
		err := tx.QueryRow(ctx, `
			UPDATE products SET stock = GREATEST(stock - $2, 0), updated_at = NOW()
			WHERE id = $1
			RETURNING id, name, stock
		`, *it.ProductID, it.Quantity).Scan(&lvl.ProductID, &lvl.Name, &lvl.Stock)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		conf.Stock = append(conf.Stock, lvl)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return conf, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, from []Status, to Status) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	guard := make([]string, len(from))
	for i, s := range from {
		guard[i] = string(s)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`, id, string(to), guard)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) ListSince(ctx context.Context, since time.Time) ([]Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+orderCols+` FROM orders WHERE created_at >= $1 ORDER BY created_at`, since)
	if err != nil {
		return nil, nil, err
	}
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	items, err := queryItems(ctx, r.db, `
		WHERE order_id IN (SELECT id FROM orders WHERE created_at >= $1)`, since)
	if err != nil {
		return nil, nil, err
	}
	return orders, items, nil
}
