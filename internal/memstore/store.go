// Package memstore keeps every repository in process memory behind one
// mutex. It backs STORE_DRIVER=memory and the tests; the mutex plays the part
// of the row locks and transactions of the Postgres implementations.
//
//	st := memstore.New()
//	products, carts, orders := st.Catalog(), st.Carts(), st.Orders()
package memstore

import (
	"sync"
	"time"

	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/contact"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	categories map[string]product.Category
	products   map[string]product.Product
	reviews    map[string]product.Review
	wishlist   map[string]map[string]time.Time // user -> product -> added

	lines map[string]cart.Line // without the joined product

	orders  map[string]order.Order
	items   map[string][]order.Item // by order id
	coupons map[string]order.Coupon

	users    map[string]user.User
	profiles map[string]user.Profile
	queries  []contact.Query
}

func New() *Store {
	return &Store{
		now:        func() time.Time { return time.Now().UTC() },
		categories: map[string]product.Category{},
		products:   map[string]product.Product{},
		reviews:    map[string]product.Review{},
		wishlist:   map[string]map[string]time.Time{},
		lines:      map[string]cart.Line{},
		orders:     map[string]order.Order{},
		items:      map[string][]order.Item{},
		coupons:    map[string]order.Coupon{},
		users:      map[string]user.User{},
		profiles:   map[string]user.Profile{},
	}
}

// SetClock replaces the time source used for created/updated stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Catalog() *Catalog   { return &Catalog{s} }
func (s *Store) Carts() *Carts       { return &Carts{s} }
func (s *Store) Orders() *Orders     { return &Orders{s} }
func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Contacts() *Contacts { return &Contacts{s} }

// PutCategory inserts or replaces a category.
func (s *Store) PutCategory(c product.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// PutProduct inserts or replaces a product.
func (s *Store) PutProduct(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.products[p.ID] = p
}

// DeleteProduct removes a product the way the schema's foreign keys do:
// order items keep their snapshot with a nil product, cart lines, reviews
// and wishlist entries go away.
func (s *Store) DeleteProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	for oid, items := range s.items {
		for i := range items {
			if items[i].ProductID != nil && *items[i].ProductID == id {
				items[i].ProductID = nil
			}
		}
		s.items[oid] = items
	}
	for lid, l := range s.lines {
		if l.ProductID == id {
			delete(s.lines, lid)
		}
	}
	for rid, r := range s.reviews {
		if r.ProductID == id {
			delete(s.reviews, rid)
		}
	}
	for _, w := range s.wishlist {
		delete(w, id)
	}
}

// PutCoupon inserts or replaces a coupon.
func (s *Store) PutCoupon(c order.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.ID] = c
}
