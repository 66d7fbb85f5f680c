package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/MikeMC777/joyeria-ecom/internal/order"
)

// Orders implements order.Repository and order.CouponRepository.
type Orders struct{ s *Store }

func copyItems(items []order.Item) []order.Item {
	out := make([]order.Item, len(items))
	for i, it := range items {
		if it.ProductID != nil {
			pid := *it.ProductID
			it.ProductID = &pid
		}
		out[i] = it
	}
	return out
}

func (o *Orders) Create(_ context.Context, ord *order.Order, items []order.Item, cartLineIDs []string) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for _, existing := range o.s.orders {
		if existing.Number == ord.Number {
			return order.ErrDuplicateNumber
		}
	}
	now := o.s.now()
	ord.CreatedAt, ord.UpdatedAt = now, now
	ord.Paid = false
	ord.TransactionID = nil
	o.s.orders[ord.ID] = *ord

	stored := copyItems(items)
	for i := range stored {
		stored[i].OrderID = ord.ID
	}
	o.s.items[ord.ID] = stored
	for _, id := range cartLineIDs {
		delete(o.s.lines, id)
	}
	return nil
}

func (o *Orders) GetByID(_ context.Context, id string) (*order.Order, []order.Item, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	ord, ok := o.s.orders[id]
	if !ok {
		return nil, nil, order.ErrNotFound
	}
	return &ord, copyItems(o.s.items[id]), nil
}

func (o *Orders) ListByUser(_ context.Context, userID string, limit, offset int) ([]order.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	out := []order.Order{}
	for _, ord := range o.s.orders {
		if ord.OwnedBy(userID) {
			out = append(out, ord)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []order.Order{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// ConfirmPayment runs entirely under the store mutex, which stands in for
// the order row lock.
func (o *Orders) ConfirmPayment(_ context.Context, id, transactionID string) (*order.Confirmation, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	ord, ok := o.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if ord.Paid {
		return nil, order.ErrAlreadyPaid
	}

	ord.Paid = true
	ord.TransactionID = &transactionID
	ord.UpdatedAt = o.s.now()
	if ord.Status != order.StatusCancelled {
		ord.Status = order.StatusConfirmed
	}
	o.s.orders[id] = ord

	conf := &order.Confirmation{Order: ord, Items: copyItems(o.s.items[id])}
	if ord.Status == order.StatusCancelled {
		return conf, nil
	}
	for _, it := range conf.Items {
		if it.ProductID == nil {
			continue
		}
		p, ok := o.s.products[*it.ProductID]
		if !ok {
			continue
		}
		p.Stock -= it.Quantity
		if p.Stock < 0 {
			p.Stock = 0
		}
		p.UpdatedAt = ord.UpdatedAt
		o.s.products[p.ID] = p
		conf.Stock = append(conf.Stock, order.StockLevel{ProductID: p.ID, Name: p.Name, Stock: p.Stock})
	}
	return conf, nil
}

func (o *Orders) UpdateStatus(_ context.Context, id string, from []order.Status, to order.Status) (bool, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	ord, ok := o.s.orders[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if ord.Status == f {
			ord.Status = to
			ord.UpdatedAt = o.s.now()
			o.s.orders[id] = ord
			return true, nil
		}
	}
	return false, nil
}

func (o *Orders) ListSince(_ context.Context, since time.Time) ([]order.Order, []order.Item, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	var orders []order.Order
	var items []order.Item
	for id, ord := range o.s.orders {
		if ord.CreatedAt.Before(since) {
			continue
		}
		orders = append(orders, ord)
		items = append(items, copyItems(o.s.items[id])...)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, items, nil
}

func (o *Orders) GetByCode(_ context.Context, code string) (*order.Coupon, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for _, c := range o.s.coupons {
		if strings.EqualFold(c.Code, code) {
			return &c, nil
		}
	}
	return nil, order.ErrCouponNotFound
}

func (o *Orders) IncrementUsage(_ context.Context, id string) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	c, ok := o.s.coupons[id]
	if !ok {
		return order.ErrCouponNotFound
	}
	c.UsedCount++
	o.s.coupons[id] = c
	return nil
}
