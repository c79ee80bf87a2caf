package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends plain text transactional mail
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds the outbound mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail through a plain SMTP relay
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a mailer for the given relay settings
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers a single plain text message
func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mailer: failed to send to %s: %w", to, err)
	}
	return nil
}

// NopMailer drops all mail. Used when no SMTP relay is configured.
type NopMailer struct{}

func (NopMailer) Send(to, subject, body string) error { return nil }

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = NopMailer{}
)
