package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const EventCheckoutCompleted = "checkout.session.completed"

// Event is the part of a verified provider event the order workflow needs.
type Event struct {
	ID                string
	Type              string
	SessionID         string
	Metadata          map[string]string
	ClientReferenceID string
	PaymentIntent     string
}

// OrderID resolves the order the event refers to: metadata first, then the
// session's client reference. Empty when neither is present.
func (e Event) OrderID() string {
	if id := e.Metadata["order_id"]; id != "" {
		return id
	}
	return e.ClientReferenceID
}

// PaymentReference is the identifier stored as the order's transaction id.
func (e Event) PaymentReference() string {
	if e.PaymentIntent != "" {
		return e.PaymentIntent
	}
	return e.SessionID
}

// ParseEvent verifies the signature header against secret and decodes the
// event. An empty secret never verifies.
func ParseEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	if secret == "" || sigHeader == "" {
		return nil, ErrAuthentication
	}
	if err := webhook.ValidatePayload(payload, sigHeader, secret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	var raw stripe.Event
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode event: %v", ErrAuthentication, err)
	}
	ev := &Event{ID: raw.ID, Type: string(raw.Type)}
	if ev.Type != EventCheckoutCompleted || raw.Data == nil {
		return ev, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(raw.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", ErrAuthentication, err)
	}
	ev.SessionID = cs.ID
	ev.Metadata = cs.Metadata
	ev.ClientReferenceID = cs.ClientReferenceID
	if cs.PaymentIntent != nil {
		ev.PaymentIntent = cs.PaymentIntent.ID
	}
	return ev, nil
}
