package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

type Service struct {
	repo     Repository
	products product.Repository
}

func NewService(repo Repository, products product.Repository) *Service {
	return &Service{repo: repo, products: products}
}

func clamp(q, lo, hi int) int {
	if q < lo {
		return lo
	}
	if q > hi {
		return hi
	}
	return q
}

// Add puts quantity units of a product in the owner's cart, clamped to
// [1, stock]. An existing line for the same product is incremented and
// re-clamped instead of duplicated.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (*Line, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock < 1 {
		return nil, ErrOutOfStock
	}
	quantity = clamp(quantity, 1, p.Stock)

	existing, err := s.repo.FindLine(ctx, userID, productID)
	switch {
	case err == nil:
		existing.Quantity = clamp(existing.Quantity+quantity, 1, p.Stock)
		if err := s.repo.SetQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, err
		}
		existing.Product = *p
		return existing, nil
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}

	l := &Line{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Product:   *p,
	}
	if err := s.repo.InsertLine(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update sets a line's quantity. Only a lower bound is enforced here; stock is
// not re-checked.
func (s *Service) Update(ctx context.Context, userID, lineID string, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	l, err := s.repo.GetLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantity(ctx, l.ID, quantity); err != nil {
		return nil, err
	}
	l.Quantity = quantity
	return l, nil
}

func (s *Service) Remove(ctx context.Context, userID, lineID string) error {
	ok, err := s.repo.DeleteLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Lines(ctx context.Context, userID string) ([]Line, error) {
	return s.repo.Lines(ctx, userID)
}
