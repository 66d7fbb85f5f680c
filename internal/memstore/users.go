package memstore

import (
	"context"
	"strings"

	"github.com/MikeMC777/joyeria-ecom/internal/contact"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

// Users implements user.Repository.
type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, usr *user.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr.Email = strings.ToLower(usr.Email)
	for _, existing := range u.s.users {
		if existing.Email == usr.Email || existing.Username == usr.Username {
			return user.ErrAlreadyExist
		}
	}
	now := u.s.now()
	usr.CreatedAt, usr.UpdatedAt = now, now
	u.s.users[usr.ID] = *usr
	return nil
}

func (u *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &usr, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, usr := range u.s.users {
		if usr.Email == strings.ToLower(email) {
			return &usr, nil
		}
	}
	return nil, user.ErrNotFound
}

// Delete drops the account, its profile, cart, reviews and wishlist. Orders
// stay with no owner.
func (u *Users) Delete(_ context.Context, id string) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[id]; !ok {
		return false, nil
	}
	delete(u.s.users, id)
	delete(u.s.profiles, id)
	delete(u.s.wishlist, id)
	for lid, l := range u.s.lines {
		if l.UserID == id {
			delete(u.s.lines, lid)
		}
	}
	for rid, r := range u.s.reviews {
		if r.UserID == id {
			delete(u.s.reviews, rid)
		}
	}
	for oid, o := range u.s.orders {
		if o.UserID != nil && *o.UserID == id {
			o.UserID = nil
			u.s.orders[oid] = o
		}
	}
	return true, nil
}

func (u *Users) SaveProfile(_ context.Context, p *user.Profile) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[p.UserID]; !ok {
		return user.ErrNotFound
	}
	u.s.profiles[p.UserID] = *p
	return nil
}

func (u *Users) GetProfile(_ context.Context, userID string) (*user.Profile, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	p, ok := u.s.profiles[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &p, nil
}

// Contacts implements contact.Repository.
type Contacts struct{ s *Store }

func (c *Contacts) CreateQuery(_ context.Context, q *contact.Query) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	q.CreatedAt = c.s.now()
	c.s.queries = append(c.s.queries, *q)
	return nil
}

// Queries returns the stored contact queries, oldest first.
func (c *Contacts) Queries() []contact.Query {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return append([]contact.Query(nil), c.s.queries...)
}
