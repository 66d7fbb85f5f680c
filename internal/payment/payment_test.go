package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test"

func sign(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Header
}

func completedPayload(metadata map[string]string, clientRef string, intent any) []byte {
	obj := map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"metadata":            metadata,
		"client_reference_id": clientRef,
		"payment_intent":      intent,
	}
	b, _ := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        EventCheckoutCompleted,
		"api_version": "2023-10-16",
		"data":        map[string]any{"object": obj},
	})
	return b
}

func TestParseEvent_Completed(t *testing.T) {
	payload := completedPayload(map[string]string{"order_id": "ord-1"}, "ord-2", "pi_123")

	ev, err := ParseEvent(payload, sign(t, payload, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "ord-1", ev.OrderID())
	assert.Equal(t, "pi_123", ev.PaymentReference())
}

func TestParseEvent_FallsBackToClientReferenceAndSessionID(t *testing.T) {
	payload := completedPayload(map[string]string{}, "ord-2", nil)

	ev, err := ParseEvent(payload, sign(t, payload, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ord-2", ev.OrderID())
	assert.Equal(t, "cs_test_1", ev.PaymentReference())
}

func TestParseEvent_BadSignature(t *testing.T) {
	payload := completedPayload(map[string]string{"order_id": "ord-1"}, "", "pi_1")

	_, err := ParseEvent(payload, sign(t, payload, "whsec_other"), testSecret)
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = ParseEvent(payload, "", testSecret)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestParseEvent_EmptySecretRejects(t *testing.T) {
	payload := completedPayload(nil, "ord-1", "pi_1")
	_, err := ParseEvent(payload, sign(t, payload, ""), "")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestParseEvent_OtherTypeIsReturnedUntouched(t *testing.T) {
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)

	ev, err := ParseEvent(payload, sign(t, payload, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.OrderID())
}

func TestStripeGateway_CreateSession(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","url":"https://pay.example/cs_test_9"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test", Currency: "usd", Timeout: 2 * time.Second, APIBase: srv.URL})
	s, err := g.CreateSession(context.Background(), SessionRequest{
		OrderID:    "ord-1",
		Items:      []LineItem{{Name: "Ring", UnitAmount: 50000, Quantity: 2}},
		SuccessURL: "http://shop/success",
		CancelURL:  "http://shop/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_test_9", s.URL)
	assert.Equal(t, "ord-1", form.Get("metadata[order_id]"))
	assert.Equal(t, "50000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
}

func TestStripeGateway_ProviderErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test", APIBase: srv.URL})
	_, err := g.CreateSession(context.Background(), SessionRequest{OrderID: "ord-1"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Unconfigured{}.CreateSession(context.Background(), SessionRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
