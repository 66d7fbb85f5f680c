package order_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/memstore"
	"github.com/MikeMC777/joyeria-ecom/internal/notify"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/payment"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

func init() { logger.Discard() }

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type fakeGateway struct {
	mu   sync.Mutex
	reqs []payment.SessionRequest
	err  error
}

func (g *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, m notify.Message) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, m)
	return notify.Result{}
}

func (n *recordingNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Kind, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.Kind)
	}
	return out
}

func (n *recordingNotifier) byKind(k notify.Kind) []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Message
	for _, m := range n.msgs {
		if m.Kind == k {
			out = append(out, m)
		}
	}
	return out
}

type invalidations struct{ n int }

func (i *invalidations) Invalidate(context.Context) error { i.n++; return nil }

type phoneBook map[string]string

func (p phoneBook) Phone(_ context.Context, userID string) (string, error) { return p[userID], nil }

type fixture struct {
	st       *memstore.Store
	wf       *order.Workflow
	gw       *fakeGateway
	notes    *recordingNotifier
	cache    *invalidations
	carts    *cart.Service
	buyer    auth.Actor
	staff    auth.Actor
	products map[string]product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	st.SetClock(func() time.Time { return fixedNow })
	f := &fixture{
		st:       st,
		gw:       &fakeGateway{},
		notes:    &recordingNotifier{},
		cache:    &invalidations{},
		buyer:    auth.Actor{UserID: uuid.NewString()},
		staff:    auth.Actor{UserID: uuid.NewString(), Staff: true},
		products: map[string]product.Product{},
	}
	f.carts = cart.NewService(st.Carts(), st.Catalog())
	f.wf = order.NewWorkflow(order.Deps{
		Orders:   st.Orders(),
		Carts:    st.Carts(),
		Coupons:  st.Orders(),
		Gateway:  f.gw,
		Notifier: f.notes,
		Catalog:  f.cache,
	}, order.Settings{AdminEmail: "admin@example.com", PublicBaseURL: "https://shop.example/"})
	f.wf.SetClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) product.Product {
	t.Helper()
	p := product.Product{
		ID:    uuid.NewString(),
		Slug:  name,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	f.st.PutProduct(p)
	f.products[p.ID] = p
	return p
}

func (f *fixture) addToCart(t *testing.T, p product.Product, qty int) {
	t.Helper()
	_, err := f.carts.Add(context.Background(), f.buyer.UserID, p.ID, qty)
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.st.Catalog().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func shipping() order.CheckoutRequest {
	return order.CheckoutRequest{Shipping: order.Shipping{
		FirstName:  "Ana",
		LastName:   "Diaz",
		Email:      "ana@example.com",
		Address:    "Calle 1",
		City:       "Madrid",
		PostalCode: "28001",
		Country:    "ES",
	}}
}

func completed(orderID, intent string) payment.Event {
	return payment.Event{
		ID:            "evt_" + uuid.NewString(),
		Type:          payment.EventCheckoutCompleted,
		SessionID:     "cs_test_1",
		Metadata:      map[string]string{"order_id": orderID},
		PaymentIntent: intent,
	}
}

func TestCreateOrder_SnapshotsPricesAndConsumesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "ring", "120.00", 10)
	chain := f.product(t, "chain", "35.50", 10)
	f.addToCart(t, ring, 1)
	f.addToCart(t, chain, 3)

	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "226.5", out.Order.Total.String())
	assert.Equal(t, order.StatusPending, out.Order.Status)
	assert.False(t, out.Order.Paid)
	assert.Nil(t, out.Order.TransactionID)
	assert.Equal(t, order.PaymentMethodStripe, out.Order.PaymentMethod)
	assert.Equal(t, "https://pay.example/cs_test_1", out.RedirectURL)

	lines, err := f.carts.Lines(ctx, f.buyer.UserID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// later catalog changes do not touch the order
	ring.Price = decimal.RequireFromString("999.00")
	f.st.PutProduct(ring)
	_, items, err := f.st.Orders().GetByID(ctx, out.Order.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
		if *it.ProductID == ring.ID {
			assert.Equal(t, "120", it.Price.String())
			assert.Equal(t, "ring", it.ProductName)
		}
	}
	assert.True(t, sum.Equal(out.Order.Total))

	require.Len(t, f.gw.reqs, 1)
	req := f.gw.reqs[0]
	assert.Equal(t, out.Order.ID, req.OrderID)
	assert.Equal(t, "https://shop.example/orders/"+out.Order.ID+"?payment=success", req.SuccessURL)
	assert.Len(t, req.Items, 2)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.wf.CreateOrder(ctx, auth.Actor{}, shipping())
	assert.ErrorIs(t, err, order.ErrForbidden)

	_, err = f.wf.CreateOrder(ctx, f.buyer, shipping())
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	bad := shipping()
	bad.Email = "not-an-email"
	f.addToCart(t, f.product(t, "ring", "10.00", 1), 1)
	_, err = f.wf.CreateOrder(ctx, f.buyer, bad)
	assert.ErrorIs(t, err, order.ErrInvalidShipping)
}

func TestCreateOrder_Coupons(t *testing.T) {
	limit := 1
	cases := []struct {
		name     string
		coupon   *order.Coupon
		code     string
		total    string
		warnings []string
	}{
		{
			name:   "valid",
			coupon: &order.Coupon{Code: "WELCOME10", DiscountPercent: decimal.NewFromInt(10), Active: true},
			code:   "welcome10",
			total:  "90",
		},
		{
			name:     "unknown",
			code:     "NOPE",
			total:    "100",
			warnings: []string{order.WarnCouponNotFound},
		},
		{
			name:     "expired",
			coupon:   &order.Coupon{Code: "OLD", DiscountPercent: decimal.NewFromInt(10), Active: true, ValidTo: fixedNow.Add(-time.Hour)},
			code:     "OLD",
			total:    "100",
			warnings: []string{order.WarnCouponInvalid},
		},
		{
			name:     "exhausted",
			coupon:   &order.Coupon{Code: "ONCE", DiscountPercent: decimal.NewFromInt(10), Active: true, UsageLimit: &limit, UsedCount: 1},
			code:     "ONCE",
			total:    "100",
			warnings: []string{order.WarnCouponInvalid},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.coupon != nil {
				c := *tc.coupon
				c.ID = uuid.NewString()
				if c.ValidFrom.IsZero() {
					c.ValidFrom = fixedNow.AddDate(0, -1, 0)
				}
				if c.ValidTo.IsZero() {
					c.ValidTo = fixedNow.AddDate(0, 1, 0)
				}
				f.st.PutCoupon(c)
			}
			f.addToCart(t, f.product(t, "ring", "50.00", 5), 2)

			req := shipping()
			req.CouponCode = tc.code
			out, err := f.wf.CreateOrder(context.Background(), f.buyer, req)
			require.NoError(t, err)
			assert.Equal(t, tc.total, out.Order.Total.String())
			assert.Equal(t, tc.warnings, out.Warnings)
		})
	}
}

func TestCreateOrder_DiscountedOrderChargedAsSingleLine(t *testing.T) {
	f := newFixture(t)
	f.st.PutCoupon(order.Coupon{
		ID: uuid.NewString(), Code: "WELCOME10", DiscountPercent: decimal.NewFromInt(10), Active: true,
		ValidFrom: fixedNow.AddDate(0, -1, 0), ValidTo: fixedNow.AddDate(0, 1, 0),
	})
	f.addToCart(t, f.product(t, "ring", "33.33", 5), 1)
	req := shipping()
	req.CouponCode = "WELCOME10"

	out, err := f.wf.CreateOrder(context.Background(), f.buyer, req)
	require.NoError(t, err)
	assert.Equal(t, "3.33", out.Order.Discount.String())
	assert.Equal(t, "WELCOME10", out.Order.CouponCode)
	require.Len(t, f.gw.reqs[0].Items, 1)
	assert.Equal(t, int64(3000), f.gw.reqs[0].Items[0].UnitAmount)

	c, err := f.st.Orders().GetByCode(context.Background(), "welcome10")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsedCount)
}

func TestCreateOrder_GatewayFailureLeavesPendingOrder(t *testing.T) {
	f := newFixture(t)
	f.gw.err = payment.ErrUnavailable
	f.addToCart(t, f.product(t, "ring", "10.00", 5), 1)

	out, err := f.wf.CreateOrder(context.Background(), f.buyer, shipping())
	require.ErrorIs(t, err, order.ErrPaymentUnavailable)
	require.NotNil(t, out)
	assert.Empty(t, out.RedirectURL)

	stored, _, err := f.st.Orders().GetByID(context.Background(), out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)

	f.gw.err = nil
	url, err := f.wf.StartPayment(context.Background(), f.buyer, out.Order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	_, err = f.wf.StartPayment(context.Background(), auth.Actor{UserID: uuid.NewString()}, out.Order.ID)
	assert.ErrorIs(t, err, order.ErrForbidden)
}

func TestCreateOrder_NumberFormatAndRetry(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.product(t, "ring", "10.00", 5), 1)
	first, err := f.wf.CreateOrder(context.Background(), f.buyer, shipping())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20240315-[A-Z0-9]{6}$`), first.Order.Number)

	calls := 0
	f.wf.SetNumberSource(func(now time.Time) string {
		calls++
		if calls < 3 {
			return first.Order.Number
		}
		return order.NewNumber(now)
	})
	f.addToCart(t, f.product(t, "chain", "10.00", 5), 1)
	second, err := f.wf.CreateOrder(context.Background(), f.buyer, shipping())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotEqual(t, first.Order.Number, second.Order.Number)
}

func TestCreateOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.product(t, "ring", "10.00", 5), 1)
	first, err := f.wf.CreateOrder(context.Background(), f.buyer, shipping())
	require.NoError(t, err)

	f.wf.SetNumberSource(func(time.Time) string { return first.Order.Number })
	f.addToCart(t, f.product(t, "chain", "10.00", 5), 1)
	_, err = f.wf.CreateOrder(context.Background(), f.buyer, shipping())
	assert.ErrorIs(t, err, order.ErrDuplicateNumber)
}

func TestApplyPaymentConfirmation_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "500.00", 10)
	f.addToCart(t, ring, 2)

	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)
	assert.Equal(t, "1000", out.Order.Total.String())
	assert.Equal(t, order.StatusPending, out.Order.Status)
	assert.Equal(t, 10, f.stock(t, ring.ID))

	outcome, err := f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_123"))
	require.NoError(t, err)
	assert.Equal(t, order.OutcomeConfirmed, outcome)

	o, _, err := f.st.Orders().GetByID(ctx, out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, o.Status)
	assert.True(t, o.Paid)
	require.NotNil(t, o.TransactionID)
	assert.Equal(t, "pi_123", *o.TransactionID)
	assert.Equal(t, 8, f.stock(t, ring.ID))
	assert.Equal(t, []notify.Kind{notify.KindOrderConfirmed}, f.notes.kinds())
	assert.Equal(t, 1, f.cache.n)

	msg := f.notes.byKind(notify.KindOrderConfirmed)[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Empty(t, msg.SMS)
}

func TestApplyPaymentConfirmation_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "500.00", 10)
	f.addToCart(t, ring, 2)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	ev := completed(out.Order.ID, "pi_123")
	first, err := f.wf.ApplyPaymentConfirmation(ctx, ev)
	require.NoError(t, err)
	second, err := f.wf.ApplyPaymentConfirmation(ctx, ev)
	require.NoError(t, err)

	assert.Equal(t, order.OutcomeConfirmed, first)
	assert.Equal(t, order.OutcomeDuplicate, second)
	assert.Equal(t, 8, f.stock(t, ring.ID))
	assert.Len(t, f.notes.byKind(notify.KindOrderConfirmed), 1)
}

func TestApplyPaymentConfirmation_ConcurrentDuplicatesDecrementOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "500.00", 20)
	f.addToCart(t, ring, 3)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	const n = 8
	outcomes := make([]order.Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], _ = f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_same"))
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for _, o := range outcomes {
		if o == order.OutcomeConfirmed {
			confirmed++
		} else {
			assert.Equal(t, order.OutcomeDuplicate, o)
		}
	}
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 17, f.stock(t, ring.ID))
	assert.Len(t, f.notes.byKind(notify.KindOrderConfirmed), 1)
}

func TestApplyPaymentConfirmation_StockFlooredAndLowStockAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "10.00", 5)
	f.addToCart(t, ring, 3)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	// stock sold elsewhere before the payment lands
	ring.Stock = 1
	f.st.PutProduct(ring)

	_, err = f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_1"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, ring.ID))

	alerts := f.notes.byKind(notify.KindLowStock)
	require.Len(t, alerts, 1)
	assert.Equal(t, "admin@example.com", alerts[0].To)
	assert.Contains(t, alerts[0].Subject, "Ring")
}

func TestApplyPaymentConfirmation_NoAlertAboveThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "10.00", 10)
	f.addToCart(t, ring, 4)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	_, err = f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_1"))
	require.NoError(t, err)
	assert.Equal(t, 6, f.stock(t, ring.ID))
	assert.Empty(t, f.notes.byKind(notify.KindLowStock))
}

func TestApplyPaymentConfirmation_SkipsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "10.00", 10)
	chain := f.product(t, "Chain", "10.00", 10)
	f.addToCart(t, ring, 1)
	f.addToCart(t, chain, 1)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)
	f.st.DeleteProduct(ring.ID)

	outcome, err := f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_1"))
	require.NoError(t, err)
	assert.Equal(t, order.OutcomeConfirmed, outcome)
	assert.Equal(t, 9, f.stock(t, chain.ID))

	_, items, err := f.st.Orders().GetByID(ctx, out.Order.ID)
	require.NoError(t, err)
	for _, it := range items {
		if it.ProductName == "Ring" {
			assert.Nil(t, it.ProductID)
		}
	}
}

func TestApplyPaymentConfirmation_DropsAndIgnores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.wf.ApplyPaymentConfirmation(ctx, payment.Event{ID: "evt_1", Type: "payment_intent.created"})
	require.NoError(t, err)
	assert.Equal(t, order.OutcomeIgnored, outcome)

	outcome, err = f.wf.ApplyPaymentConfirmation(ctx, payment.Event{ID: "evt_2", Type: payment.EventCheckoutCompleted})
	require.NoError(t, err)
	assert.Equal(t, order.OutcomeDropped, outcome)

	outcome, err = f.wf.ApplyPaymentConfirmation(ctx, completed(uuid.NewString(), "pi_x"))
	require.NoError(t, err)
	assert.Equal(t, order.OutcomeDropped, outcome)
	assert.Empty(t, f.notes.kinds())
}

func TestApplyPaymentConfirmation_ClientReferenceFallbackAndSMS(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.wf = order.NewWorkflow(order.Deps{
		Orders:   f.st.Orders(),
		Carts:    f.st.Carts(),
		Coupons:  f.st.Orders(),
		Gateway:  f.gw,
		Notifier: f.notes,
		Phones:   phoneBook{f.buyer.UserID: "+34600000000"},
	}, order.Settings{})
	f.addToCart(t, f.product(t, "Ring", "10.00", 10), 1)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	ev := payment.Event{ID: "evt_3", Type: payment.EventCheckoutCompleted, SessionID: "cs_9", ClientReferenceID: out.Order.ID}
	outcome, err := f.wf.ApplyPaymentConfirmation(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, order.OutcomeConfirmed, outcome)

	o, _, err := f.st.Orders().GetByID(ctx, out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_9", *o.TransactionID)

	msg := f.notes.byKind(notify.KindOrderConfirmed)[0]
	assert.Equal(t, "+34600000000", msg.Phone)
	assert.Contains(t, msg.SMS, o.Number)
}

func TestApplyPaymentConfirmation_CancelledOrderKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ring := f.product(t, "Ring", "10.00", 10)
	f.addToCart(t, ring, 2)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)
	ok, err := f.wf.CancelOrder(ctx, f.buyer, out.Order.ID)
	require.NoError(t, err)
	require.True(t, ok)

	outcome, err := f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_late"))
	require.NoError(t, err)
	assert.Equal(t, order.OutcomePaidAfterCancel, outcome)

	o, _, err := f.st.Orders().GetByID(ctx, out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, o.Status)
	assert.True(t, o.Paid)
	assert.Equal(t, 10, f.stock(t, ring.ID))
	assert.Len(t, f.notes.byKind(notify.KindPaymentAnomaly), 1)
}

func TestCancelOrder_Rules(t *testing.T) {
	cases := []struct {
		status  order.Status
		actor   string // owner | staff | stranger
		want    bool
		wantErr error
	}{
		{order.StatusPending, "owner", true, nil},
		{order.StatusConfirmed, "owner", true, nil},
		{order.StatusConfirmed, "staff", true, nil},
		{order.StatusProcessing, "owner", false, order.ErrInvalidTransition},
		{order.StatusShipped, "staff", false, order.ErrInvalidTransition},
		{order.StatusDelivered, "owner", false, order.ErrInvalidTransition},
		{order.StatusCancelled, "owner", false, order.ErrInvalidTransition},
		{order.StatusPending, "stranger", false, order.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.status)+"/"+tc.actor, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			ring := f.product(t, "Ring", "10.00", 10)
			f.addToCart(t, ring, 1)
			out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
			require.NoError(t, err)
			if tc.status != order.StatusPending {
				_, err := f.st.Orders().UpdateStatus(ctx, out.Order.ID, []order.Status{order.StatusPending}, tc.status)
				require.NoError(t, err)
			}

			actor := map[string]auth.Actor{
				"owner":    f.buyer,
				"staff":    f.staff,
				"stranger": {UserID: uuid.NewString()},
			}[tc.actor]
			got, err := f.wf.CancelOrder(ctx, actor, out.Order.ID)
			assert.Equal(t, tc.want, got)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			o, _, err := f.st.Orders().GetByID(ctx, out.Order.ID)
			require.NoError(t, err)
			if tc.want {
				assert.Equal(t, order.StatusCancelled, o.Status)
				assert.Len(t, f.notes.byKind(notify.KindOrderCancelled), 1)
			} else {
				assert.Equal(t, tc.status, o.Status)
			}
			assert.Equal(t, 10, f.stock(t, ring.ID))
		})
	}
}

func TestCancelOrder_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	ok, err := f.wf.CancelOrder(context.Background(), f.buyer, uuid.NewString())
	assert.False(t, ok)
	assert.True(t, errors.Is(err, order.ErrNotFound))
}

func TestAdvanceStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.product(t, "Ring", "10.00", 10), 1)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	_, err = f.wf.AdvanceStatus(ctx, f.buyer, out.Order.ID, order.StatusProcessing)
	assert.ErrorIs(t, err, order.ErrForbidden)
	_, err = f.wf.AdvanceStatus(ctx, f.staff, out.Order.ID, order.StatusProcessing)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	_, err = f.wf.AdvanceStatus(ctx, f.staff, out.Order.ID, order.StatusConfirmed)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)

	_, err = f.wf.ApplyPaymentConfirmation(ctx, completed(out.Order.ID, "pi_1"))
	require.NoError(t, err)
	for _, to := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		o, err := f.wf.AdvanceStatus(ctx, f.staff, out.Order.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, o.Status)
	}
	_, err = f.wf.AdvanceStatus(ctx, f.staff, out.Order.ID, order.StatusCancelled)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Len(t, f.notes.byKind(notify.KindOrderStatus), 3)
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.product(t, "Ring", "10.00", 10), 1)
	out, err := f.wf.CreateOrder(ctx, f.buyer, shipping())
	require.NoError(t, err)

	_, items, err := f.wf.Get(ctx, f.buyer, out.Order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	_, _, err = f.wf.Get(ctx, f.staff, out.Order.ID)
	assert.NoError(t, err)
	_, _, err = f.wf.Get(ctx, auth.Actor{UserID: uuid.NewString()}, out.Order.ID)
	assert.ErrorIs(t, err, order.ErrForbidden)

	list, err := f.wf.ListByUser(ctx, f.buyer, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.wf.ListByUser(ctx, auth.Actor{}, 10, 0)
	assert.ErrorIs(t, err, order.ErrForbidden)
}
