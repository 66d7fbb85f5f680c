// Package notify fans a message out over the configured channels (email,
// SMS, order-event stream). Delivery is best-effort: every channel is tried,
// failures are logged and reported in the Result, nothing is retried.
//
//	res := d.Dispatch(ctx, notify.Message{Kind: notify.KindOrderConfirmed, To: o.Email, ...})
//	if err := res.Err(); err != nil { ... } // optional
package notify

import (
	"context"
	"errors"
	"sort"

	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/metrics"
)

type Kind string

const (
	KindOrderConfirmed   Kind = "order_confirmed"
	KindOrderCancelled   Kind = "order_cancelled"
	KindOrderStatus      Kind = "order_status"
	KindPaymentAnomaly   Kind = "payment_anomaly"
	KindLowStock         Kind = "low_stock"
	KindContactReceipt   Kind = "contact_receipt"
	KindContactAdmin     Kind = "contact_admin"
	KindReviewModeration Kind = "review_moderation"
)

// ErrSkipped is returned by a channel that has nothing to do for a message
// (no recipient, not configured). It is not a failure.
var ErrSkipped = errors.New("channel skipped")

// Message carries the content for every channel; each channel reads its own
// fields and skips when they are empty.
type Message struct {
	Kind Kind

	// email
	To      string
	Subject string
	Body    string

	// sms
	Phone string
	SMS   string

	// event stream
	Key   string
	Event any
}

type Channel interface {
	Name() string
	Send(ctx context.Context, m Message) error
}

// Result maps channel name to its outcome. A nil error means sent.
type Result struct {
	Sent    []string
	Skipped []string
	Failed  map[string]error
}

func (r Result) OK() bool { return len(r.Failed) == 0 }

// Err joins the channel failures, nil when there were none.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Failed))
	for n := range r.Failed {
		names = append(names, n)
	}
	sort.Strings(names)
	errs := make([]error, 0, len(names))
	for _, n := range names {
		errs = append(errs, r.Failed[n])
	}
	return errors.Join(errs...)
}

type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	d := &Dispatcher{}
	for _, c := range channels {
		if c != nil {
			d.channels = append(d.channels, c)
		}
	}
	return d
}

// Dispatch tries every channel in order. It never returns an error itself.
func (d *Dispatcher) Dispatch(ctx context.Context, m Message) Result {
	log := logger.FromCtx(ctx)
	res := Result{}
	for _, c := range d.channels {
		err := c.Send(ctx, m)
		switch {
		case err == nil:
			res.Sent = append(res.Sent, c.Name())
			metrics.Notifications.WithLabelValues(c.Name(), "sent").Inc()
		case errors.Is(err, ErrSkipped):
			res.Skipped = append(res.Skipped, c.Name())
			metrics.Notifications.WithLabelValues(c.Name(), "skipped").Inc()
		default:
			if res.Failed == nil {
				res.Failed = map[string]error{}
			}
			res.Failed[c.Name()] = err
			metrics.Notifications.WithLabelValues(c.Name(), "failed").Inc()
			log.Error("notify: channel failed", "channel", c.Name(), "kind", m.Kind, "error", err)
		}
	}
	return res
}
