package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/MikeMC777/joyeria-ecom/internal/logger"
)

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer sends plain-text email over SMTP. Without a host it logs the message
// instead, which is what development and tests use.
type Mailer struct {
	cfg  SMTP
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg SMTP) *Mailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

func (m *Mailer) Name() string { return "email" }

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" || msg.Subject == "" {
		return ErrSkipped
	}
	if m.cfg.Host == "" {
		logger.FromCtx(ctx).Info("notify: email (log backend)",
			"to", msg.To, "subject", msg.Subject, "kind", msg.Kind)
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, buildMIME(m.cfg.From, msg)); err != nil {
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
