package smtp

import (
	"crypto/tls"
	"fmt"

	"github.com/go-mail/mail"
	"github.com/go-otp-auth/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, htmlBody, textBody string) error
}

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type mailer struct {
	from string
	dial dialer
}

// NewMailer dials cfg.SMTPHost for every message. go-mail negotiates STARTTLS
// when the server offers it.
func NewMailer(cfg *config.Config) Mailer {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	return &mailer{from: cfg.SMTPFrom, dial: d}
}

// SendEmail sends a multipart/alternative message when both bodies are set.
func (m *mailer) SendEmail(to, subject, htmlBody, textBody string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)

	switch {
	case textBody != "" && htmlBody != "":
		msg.SetBody("text/plain", textBody)
		msg.AddAlternative("text/html", htmlBody)
	case htmlBody != "":
		msg.SetBody("text/html", htmlBody)
	default:
		msg.SetBody("text/plain", textBody)
	}

	if err := m.dial.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
