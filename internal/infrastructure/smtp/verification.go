package smtp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// VerificationSubject is the subject line of every code email.
const VerificationSubject = "OTP Auth Verification Code"

// DefaultTemplate renders the HTML body. It receives .Code and .ExpirationMinutes.
const DefaultTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Your verification code is:</p>
  <h2 style="letter-spacing: 4px;">{{.Code}}</h2>
  <p>This code expires in {{.ExpirationMinutes}} minutes.</p>
  <p>If you did not request it, you can ignore this email.</p>
</body>
</html>`

type templateData struct {
	Code              string
	ExpirationMinutes int
}

// VerificationNotifier emails verification codes.
type VerificationNotifier struct {
	mailer Mailer
	tmpl   *template.Template
}

// NewVerificationNotifier parses src as the HTML body template; an empty src
// selects DefaultTemplate.
func NewVerificationNotifier(m Mailer, src string) (*VerificationNotifier, error) {
	if src == "" {
		src = DefaultTemplate
	}
	tmpl, err := template.New("verification").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &VerificationNotifier{mailer: m, tmpl: tmpl}, nil
}

func (n *VerificationNotifier) SendVerificationCode(_ context.Context, email, code string, expiresIn time.Duration) error {
	data := templateData{Code: code, ExpirationMinutes: int(expiresIn / time.Minute)}

	var html bytes.Buffer
	if err := n.tmpl.Execute(&html, data); err != nil {
		return fmt.Errorf("render email template: %w", err)
	}
	text := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, data.ExpirationMinutes)

	return n.mailer.SendEmail(email, VerificationSubject, html.String(), text)
}
