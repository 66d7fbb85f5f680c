package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL redirects API calls, e.g. to a local stub. Empty means the
	// public Twilio API.
	BaseURL string
}

// SMSSender delivers text messages through the Twilio SDK.
type SMSSender struct {
	cfg Twilio
	rc  *twilio.RestClient
}

func NewSMSSender(cfg Twilio) *SMSSender {
	s := &SMSSender{cfg: cfg}
	if !s.configured() {
		return s
	}

	// the SDK falls back to TWILIO_* env vars when params are empty, so it is
	// only built once every credential is known
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.AccountSID,
		Password:   cfg.AuthToken,
		AccountSid: cfg.AccountSID,
	})
	hc := &http.Client{Timeout: 10 * time.Second}
	if base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/")); err == nil && base.Host != "" {
		hc.Transport = rebaseTransport{base: base, next: http.DefaultTransport}
	}
	if c, ok := rc.RequestHandler.Client.(*client.Client); ok {
		c.HTTPClient = hc
	}
	s.rc = rc
	return s
}

func (s *SMSSender) Name() string { return "sms" }

func (s *SMSSender) configured() bool {
	return s.cfg.AccountSID != "" && s.cfg.AuthToken != "" && s.cfg.From != ""
}

func (s *SMSSender) Send(ctx context.Context, m Message) error {
	if m.Phone == "" || m.SMS == "" || s.rc == nil {
		return ErrSkipped
	}
	// the SDK call takes no context
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify: sms send: %w", err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetPathAccountSid(s.cfg.AccountSID)
	params.SetTo(m.Phone)
	params.SetFrom(s.cfg.From)
	params.SetBody(m.SMS)

	if _, err := s.rc.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("notify: sms send: %w", err)
	}
	return nil
}

// rebaseTransport sends every request to base, keeping path and query.
type rebaseTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebaseTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = t.base.Scheme
	r.URL.Host = t.base.Host
	r.Host = t.base.Host
	return t.next.RoundTrip(r)
}
