package memstore

import (
	"context"
	"sort"

	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

// Carts implements cart.Repository.
type Carts struct{ s *Store }

// joined attaches the current product, false when the product is gone.
func (s *Store) joined(l cart.Line) (cart.Line, bool) {
	p, ok := s.products[l.ProductID]
	if !ok {
		return l, false
	}
	l.Product = p
	return l, true
}

func (c *Carts) Lines(_ context.Context, userID string) ([]cart.Line, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []cart.Line{}
	for _, l := range c.s.lines {
		if l.UserID != userID {
			continue
		}
		if jl, ok := c.s.joined(l); ok {
			out = append(out, jl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *Carts) GetLine(_ context.Context, userID, lineID string) (*cart.Line, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	l, ok := c.s.lines[lineID]
	if !ok || l.UserID != userID {
		return nil, cart.ErrNotFound
	}
	jl, ok := c.s.joined(l)
	if !ok {
		return nil, cart.ErrNotFound
	}
	return &jl, nil
}

func (c *Carts) FindLine(_ context.Context, userID, productID string) (*cart.Line, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, l := range c.s.lines {
		if l.UserID == userID && l.ProductID == productID {
			if jl, ok := c.s.joined(l); ok {
				return &jl, nil
			}
		}
	}
	return nil, cart.ErrNotFound
}

// InsertLine merges into an existing (user, product) line like the unique
// constraint upsert does.
func (c *Carts) InsertLine(_ context.Context, l *cart.Line) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	now := c.s.now()
	for id, existing := range c.s.lines {
		if existing.UserID == l.UserID && existing.ProductID == l.ProductID {
			existing.Quantity = l.Quantity
			existing.UpdatedAt = now
			c.s.lines[id] = existing
			l.ID, l.AddedAt, l.UpdatedAt = existing.ID, existing.AddedAt, now
			return nil
		}
	}
	l.AddedAt, l.UpdatedAt = now, now
	stored := *l
	stored.Product = product.Product{}
	c.s.lines[l.ID] = stored
	return nil
}

func (c *Carts) SetQuantity(_ context.Context, lineID string, quantity int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	l, ok := c.s.lines[lineID]
	if !ok {
		return cart.ErrNotFound
	}
	l.Quantity = quantity
	l.UpdatedAt = c.s.now()
	c.s.lines[lineID] = l
	return nil
}

func (c *Carts) DeleteLine(_ context.Context, userID, lineID string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	l, ok := c.s.lines[lineID]
	if !ok || l.UserID != userID {
		return false, nil
	}
	delete(c.s.lines, lineID)
	return true, nil
}
