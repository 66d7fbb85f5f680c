// Package contact stores customer inquiries and acknowledges them by email.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/notify"
)

var ErrInvalid = errors.New("name, valid email, subject and message are required")

type QueryType string

const (
	TypeProduct QueryType = "product"
	TypeOrder   QueryType = "order"
	TypeCustom  QueryType = "custom"
	TypeSupport QueryType = "support"
	TypeOther   QueryType = "other"
)

func (t QueryType) Valid() bool {
	switch t {
	case TypeProduct, TypeOrder, TypeCustom, TypeSupport, TypeOther:
		return true
	}
	return false
}

const StatusNew = "new"

type Query struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Type      QueryType `json:"query_type"`
	ProductID *string   `json:"product_id,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitRequest payload for POST /contact.
// swagger:model ContactRequest
type SubmitRequest struct {
	Name      string    `json:"name"       example:"Ana"`
	Email     string    `json:"email"      example:"ana@example.com"`
	Phone     string    `json:"phone"`
	Type      QueryType `json:"query_type" example:"product"`
	ProductID string    `json:"product_id"`
	Subject   string    `json:"subject"    example:"Ring sizes"`
	Message   string    `json:"message"    example:"Do you have this ring in size 7?"`
}

type Repository interface {
	CreateQuery(ctx context.Context, q *Query) error
}

type Notifier interface {
	Dispatch(ctx context.Context, m notify.Message) notify.Result
}

type Service struct {
	repo       Repository
	notifier   Notifier
	adminEmail string
}

func NewService(repo Repository, n Notifier, adminEmail string) *Service {
	return &Service{repo: repo, notifier: n, adminEmail: adminEmail}
}

// Submit stores the query, then sends a receipt to the sender and an alert to
// the admin address. Email failures do not fail the submission.
// accountEmail, when set, replaces the email given in the form.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, accountEmail string) (*Query, error) {
	q := &Query{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Type:    req.Type,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  StatusNew,
	}
	if accountEmail != "" {
		q.Email = accountEmail
	}
	if !q.Type.Valid() {
		q.Type = TypeOther
	}
	if pid := strings.TrimSpace(req.ProductID); pid != "" {
		if _, err := uuid.Parse(pid); err == nil {
			q.ProductID = &pid
		}
	}
	if q.Name == "" || q.Subject == "" || q.Message == "" {
		return nil, ErrInvalid
	}
	if _, err := mail.ParseAddress(q.Email); err != nil {
		return nil, ErrInvalid
	}

	if err := s.repo.CreateQuery(ctx, q); err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("contact query received", "id", q.ID, "type", q.Type)

	s.notifier.Dispatch(ctx, notify.Message{
		Kind:    notify.KindContactReceipt,
		To:      q.Email,
		Subject: fmt.Sprintf("We received your message: %s", q.Subject),
		Body: fmt.Sprintf("Hello %s,\n\nThanks for reaching out. We received your %s query and will reply shortly.\n\n> %s\n",
			q.Name, q.Type, q.Message),
	})
	if s.adminEmail != "" {
		s.notifier.Dispatch(ctx, notify.Message{
			Kind:    notify.KindContactAdmin,
			To:      s.adminEmail,
			Subject: fmt.Sprintf("New contact query: %s", q.Subject),
			Body: fmt.Sprintf("From: %s <%s> %s\nType: %s\n\n%s\n",
				q.Name, q.Email, q.Phone, q.Type, q.Message),
		})
	}
	return q, nil
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) CreateQuery(ctx context.Context, q *Query) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO contact_queries (id, name, email, phone, query_type, product_id, subject, message, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		RETURNING created_at
	`, q.ID, q.Name, q.Email, q.Phone, string(q.Type), q.ProductID, q.Subject, q.Message, q.Status).Scan(&q.CreatedAt)
}
