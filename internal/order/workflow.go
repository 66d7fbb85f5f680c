package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/metrics"
	"github.com/MikeMC777/joyeria-ecom/internal/money"
	"github.com/MikeMC777/joyeria-ecom/internal/notify"
	"github.com/MikeMC777/joyeria-ecom/internal/payment"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidShipping    = errors.New("invalid shipping information")
	ErrInvalidDiscount    = errors.New("discount exceeds order subtotal")
	ErrPaymentUnavailable = errors.New("payment session could not be created")
	ErrForbidden          = errors.New("not allowed to act on this order")
	ErrInvalidTransition  = errors.New("order status does not allow this change")
)

const (
	WarnCouponNotFound = "coupon code not found"
	WarnCouponInvalid  = "coupon is invalid or has expired"

	maxNumberAttempts = 5
)

// Outcome of applying a payment event.
type Outcome string

const (
	OutcomeConfirmed       Outcome = "confirmed"
	OutcomeDuplicate       Outcome = "duplicate"
	OutcomeDropped         Outcome = "dropped"
	OutcomeIgnored         Outcome = "ignored"
	OutcomePaidAfterCancel Outcome = "paid_after_cancel"
)

type CartReader interface {
	Lines(ctx context.Context, userID string) ([]cart.Line, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, m notify.Message) notify.Result
}

// CatalogCache is invalidated after confirmations change stock.
type CatalogCache interface {
	Invalidate(ctx context.Context) error
}

// PhoneBook resolves the phone on file for an account. Used when the order
// itself carries no phone.
type PhoneBook interface {
	Phone(ctx context.Context, userID string) (string, error)
}

type Settings struct {
	LowStockThreshold int
	AdminEmail        string
	PublicBaseURL     string
}

type Deps struct {
	Orders   Repository
	Carts    CartReader
	Coupons  CouponRepository
	Gateway  payment.Gateway
	Notifier Notifier
	Catalog  CatalogCache // optional
	Phones   PhoneBook    // optional
}

// Checkout is the result of CreateOrder. Order is set whenever the order was
// persisted, including when the payment session failed.
type Checkout struct {
	Order       Order
	Items       []Item
	Warnings    []string
	RedirectURL string
}

type Workflow struct {
	Deps
	cfg Settings

	now       func() time.Time
	newNumber func(time.Time) string
}

func NewWorkflow(d Deps, cfg Settings) *Workflow {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Workflow{Deps: d, cfg: cfg, now: time.Now, newNumber: NewNumber}
}

// CreateOrder turns the actor's cart into a pending order and opens a payment
// session for it. The cart lines are consumed in the same transaction that
// stores the order. A gateway failure after that commit returns the checkout
// together with an error wrapping ErrPaymentUnavailable; StartPayment retries it.
func (w *Workflow) CreateOrder(ctx context.Context, actor auth.Actor, req CheckoutRequest) (*Checkout, error) {
	log := logger.FromCtx(ctx)
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	shipping := req.Shipping.Normalize()
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	lines, err := w.Carts.Lines(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := w.now()
	subtotal := cart.Subtotal(lines)
	discount, code, warnings := w.applyCoupon(ctx, req.CouponCode, subtotal, now)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	owner := actor.UserID
	o := &Order{
		ID:            uuid.NewString(),
		UserID:        &owner,
		Shipping:      shipping,
		Total:         total,
		Discount:      discount,
		CouponCode:    code,
		PaymentMethod: PaymentMethodStripe,
		Status:        StatusPending,
	}
	items := make([]Item, 0, len(lines))
	lineIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		pid := l.ProductID
		items = append(items, Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   &pid,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
		})
		lineIDs = append(lineIDs, l.ID)
	}

	if err := w.persist(ctx, o, items, lineIDs, now); err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	log.Info("order created", "order_id", o.ID, "order_number", o.Number, "total", o.Total.StringFixed(2))

	out := &Checkout{Order: *o, Items: items, Warnings: warnings}
	url, err := w.openSession(ctx, o, items)
	if err != nil {
		log.Warn("payment session failed, order left pending", "order_number", o.Number, "error", err)
		return out, err
	}
	out.RedirectURL = url
	return out, nil
}

// applyCoupon returns the discount, the normalized code actually applied and
// any buyer-facing warning. A valid coupon's usage is counted right away.
func (w *Workflow) applyCoupon(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, string, []string) {
	code = strings.TrimSpace(code)
	if code == "" || w.Coupons == nil {
		return decimal.Zero, "", nil
	}
	log := logger.FromCtx(ctx)

	c, err := w.Coupons.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrCouponNotFound) {
			log.Warn("coupon lookup failed", "code", code, "error", err)
		}
		return decimal.Zero, "", []string{WarnCouponNotFound}
	}
	if !c.Applies(subtotal, now) {
		return decimal.Zero, "", []string{WarnCouponInvalid}
	}
	if err := w.Coupons.IncrementUsage(ctx, c.ID); err != nil {
		log.Warn("coupon usage not counted", "code", c.Code, "error", err)
	}
	return c.Discount(subtotal), c.Code, nil
}

func (w *Workflow) persist(ctx context.Context, o *Order, items []Item, lineIDs []string, now time.Time) error {
	for attempt := 1; ; attempt++ {
		o.Number = w.newNumber(now)
		err := w.Orders.Create(ctx, o, items, lineIDs)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateNumber) || attempt == maxNumberAttempts {
			return fmt.Errorf("create order: %w", err)
		}
		logger.FromCtx(ctx).Debug("order number collision, retrying", "number", o.Number, "attempt", attempt)
	}
}

func (w *Workflow) openSession(ctx context.Context, o *Order, items []Item) (string, error) {
	req := payment.SessionRequest{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		CustomerEmail: o.Email,
		SuccessURL:    fmt.Sprintf("%s/orders/%s?payment=success", w.cfg.PublicBaseURL, o.ID),
		CancelURL:     fmt.Sprintf("%s/orders/%s?payment=cancelled", w.cfg.PublicBaseURL, o.ID),
		Items:         sessionItems(o, items),
	}
	s, err := w.Gateway.CreateSession(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	return s.URL, nil
}

// sessionItems charges item by item. A discounted order is charged as one
// line for its total so the captured amount always equals total_price.
func sessionItems(o *Order, items []Item) []payment.LineItem {
	if o.Discount.IsPositive() {
		return []payment.LineItem{{
			Name:       "Order " + o.Number,
			UnitAmount: money.MinorUnits(o.Total),
			Quantity:   1,
		}}
	}
	out := make([]payment.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, payment.LineItem{
			Name:       it.ProductName,
			UnitAmount: money.MinorUnits(it.Price),
			Quantity:   int64(it.Quantity),
		})
	}
	return out
}

// StartPayment opens a new payment session for a pending, unpaid order.
func (w *Workflow) StartPayment(ctx context.Context, actor auth.Actor, orderID string) (string, error) {
	o, items, err := w.Orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !o.OwnedBy(actor.UserID) && !actor.Staff {
		return "", ErrForbidden
	}
	if o.Paid || o.Status != StatusPending {
		return "", ErrInvalidTransition
	}
	return w.openSession(ctx, o, items)
}

// ApplyPaymentConfirmation applies a verified checkout-completed event. It is
// idempotent: the store checks and sets `paid` under the order's row lock, so
// a duplicate delivery, concurrent or not, changes nothing. Unresolvable
// events are dropped without error so the sender does not retry them.
func (w *Workflow) ApplyPaymentConfirmation(ctx context.Context, ev payment.Event) (Outcome, error) {
	log := logger.FromCtx(ctx).With("event_id", ev.ID)
	outcome, err := w.applyPayment(ctx, ev)
	if err != nil {
		metrics.PaymentConfirmations.WithLabelValues("error").Inc()
		log.Error("payment confirmation failed", "error", err)
		return outcome, err
	}
	metrics.PaymentConfirmations.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

func (w *Workflow) applyPayment(ctx context.Context, ev payment.Event) (Outcome, error) {
	log := logger.FromCtx(ctx).With("event_id", ev.ID)
	if ev.Type != payment.EventCheckoutCompleted {
		log.Debug("payment event ignored", "type", ev.Type)
		return OutcomeIgnored, nil
	}
	orderID := ev.OrderID()
	if orderID == "" {
		log.Warn("payment event without order reference, dropped")
		return OutcomeDropped, nil
	}

	conf, err := w.Orders.ConfirmPayment(ctx, orderID, ev.PaymentReference())
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn("payment event for unknown order, dropped", "order_id", orderID)
		return OutcomeDropped, nil
	case errors.Is(err, ErrAlreadyPaid):
		log.Info("duplicate payment event", "order_id", orderID)
		return OutcomeDuplicate, nil
	case err != nil:
		return "", fmt.Errorf("confirm payment: %w", err)
	}

	o := conf.Order
	if o.Status == StatusCancelled {
		log.Warn("payment captured for cancelled order", "order_number", o.Number)
		w.Notifier.Dispatch(ctx, paymentAnomalyMessage(o, w.cfg.AdminEmail))
		return OutcomePaidAfterCancel, nil
	}
	log.Info("order confirmed", "order_number", o.Number, "transaction_id", ev.PaymentReference())

	if w.Catalog != nil && len(conf.Stock) > 0 {
		if err := w.Catalog.Invalidate(ctx); err != nil {
			log.Warn("catalog cache invalidation failed", "error", err)
		}
	}
	for _, lvl := range conf.Stock {
		if lvl.Stock <= w.cfg.LowStockThreshold {
			w.Notifier.Dispatch(ctx, lowStockMessage(lvl, w.cfg.AdminEmail, w.cfg.LowStockThreshold))
		}
	}
	w.Notifier.Dispatch(ctx, confirmedMessage(o, conf.Items, w.phoneFor(ctx, o)))
	return OutcomeConfirmed, nil
}

// phoneFor prefers the phone given at checkout, then the owner's profile.
func (w *Workflow) phoneFor(ctx context.Context, o Order) string {
	if o.Phone != "" {
		return o.Phone
	}
	if w.Phones == nil || o.UserID == nil {
		return ""
	}
	phone, err := w.Phones.Phone(ctx, *o.UserID)
	if err != nil {
		return ""
	}
	return phone
}

// CancelOrder cancels a pending or confirmed order for its owner or staff.
// It returns false with ErrForbidden, ErrInvalidTransition or ErrNotFound when
// the order is left untouched. Stock is never restored.
func (w *Workflow) CancelOrder(ctx context.Context, actor auth.Actor, orderID string) (bool, error) {
	o, _, err := w.Orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !o.OwnedBy(actor.UserID) && !actor.Staff {
		return false, ErrForbidden
	}
	if !o.Status.Cancellable() {
		return false, ErrInvalidTransition
	}

	ok, err := w.Orders.UpdateStatus(ctx, o.ID, []Status{StatusPending, StatusConfirmed}, StatusCancelled)
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	if !ok {
		return false, ErrInvalidTransition
	}
	o.Status = StatusCancelled
	logger.FromCtx(ctx).Info("order cancelled", "order_number", o.Number, "by_staff", actor.Staff && !o.OwnedBy(actor.UserID))
	w.Notifier.Dispatch(ctx, cancelledMessage(*o))
	return true, nil
}

// AdvanceStatus moves an order along fulfillment (confirmed, processing,
// shipped, delivered). Staff only. Confirmation belongs to the payment event
// and cancellation to CancelOrder.
func (w *Workflow) AdvanceStatus(ctx context.Context, actor auth.Actor, orderID string, to Status) (*Order, error) {
	if !actor.Staff {
		return nil, ErrForbidden
	}
	if !to.Valid() || to == StatusConfirmed || to == StatusCancelled {
		return nil, ErrInvalidTransition
	}
	o, _, err := w.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidTransition
	}
	ok, err := w.Orders.UpdateStatus(ctx, o.ID, []Status{o.Status}, to)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	from := o.Status
	o.Status = to
	o.UpdatedAt = w.now()
	logger.FromCtx(ctx).Info("order status changed", "order_number", o.Number, "from", from, "to", to)
	w.Notifier.Dispatch(ctx, statusMessage(*o, from))
	return o, nil
}

// Get returns an order visible to the actor.
func (w *Workflow) Get(ctx context.Context, actor auth.Actor, orderID string) (*Order, []Item, error) {
	o, items, err := w.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !o.OwnedBy(actor.UserID) && !actor.Staff {
		return nil, nil, ErrForbidden
	}
	return o, items, nil
}

func (w *Workflow) ListByUser(ctx context.Context, actor auth.Actor, limit, offset int) ([]Order, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	return w.Orders.ListByUser(ctx, actor.UserID, limit, offset)
}
