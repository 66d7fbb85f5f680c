package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

// Catalog implements product.Repository, ReviewRepository and WishlistRepository.
type Catalog struct{ s *Store }

func (c *Catalog) GetByID(_ context.Context, id string) (*product.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p, ok := c.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (c *Catalog) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, p := range c.s.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (c *Catalog) List(_ context.Context, q product.Query) ([]product.Product, error) {
	q = q.Normalize()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	out := []product.Product{}
	for _, p := range c.s.products {
		cat := c.s.categories[p.CategoryID]
		if q.Q != "" && !containsFold(p.Name, q.Q) && !containsFold(p.Description, q.Q) && !containsFold(cat.Name, q.Q) {
			continue
		}
		if q.CategorySlug != "" && cat.Slug != q.CategorySlug {
			continue
		}
		if (q.FeaturedOnly && !p.Featured) || (q.NewOnly && !p.New) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch q.Sort {
		case product.SortPriceLow:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case product.SortPriceHigh:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if q.Offset >= len(out) {
		return []product.Product{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[q.Offset:end], nil
}

func (c *Catalog) Categories(_ context.Context) ([]product.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := make([]product.Category, 0, len(c.s.categories))
	for _, cat := range c.s.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) CreateReview(_ context.Context, r *product.Review) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.products[r.ProductID]; !ok {
		return product.ErrNotFound
	}
	for _, existing := range c.s.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return product.ErrReviewExists
		}
	}
	r.Approved = false
	r.CreatedAt = c.s.now()
	c.s.reviews[r.ID] = *r
	return nil
}

func (c *Catalog) ListApproved(_ context.Context, productID string) ([]product.Review, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []product.Review{}
	for _, r := range c.s.reviews {
		if r.ProductID == productID && r.Approved {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *Catalog) Approve(_ context.Context, id string) (*product.Review, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	r, ok := c.s.reviews[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	r.Approved = true
	c.s.reviews[id] = r
	return &r, nil
}

func (c *Catalog) Toggle(_ context.Context, userID, productID string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.products[productID]; !ok {
		return false, product.ErrNotFound
	}
	w := c.s.wishlist[userID]
	if w == nil {
		w = map[string]time.Time{}
		c.s.wishlist[userID] = w
	}
	if _, ok := w[productID]; ok {
		delete(w, productID)
		return false, nil
	}
	w[productID] = c.s.now()
	return true, nil
}

func (c *Catalog) Wishlist(_ context.Context, userID string) ([]product.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	type entry struct {
		p     product.Product
		added time.Time
	}
	var entries []entry
	for pid, added := range c.s.wishlist[userID] {
		if p, ok := c.s.products[pid]; ok {
			entries = append(entries, entry{p, added})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].added.After(entries[j].added) })
	out := make([]product.Product, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.p)
	}
	return out, nil
}
