package email

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"
	"text/template"
	"time"
)

const (
	resetLinkSubject         = "Password Reset Request"
	resetConfirmationSubject = "Password Reset Successful"
)

var resetLinkTemplate = template.Must(template.New("resetLink").Parse(`Hello {{.Name}},

You recently requested to reset your password.

To reset your password, click on the following link:
{{.Link}}

This link will expire in {{.ExpiresIn}}.

If you didn't request this password reset, please ignore this email.
`))

var resetConfirmationTemplate = template.Must(template.New("resetConfirmation").Parse(`Hello {{.Name}},

Your password has been successfully reset. You can now log in with your new password.

If you didn't make this change, please contact support immediately.
`))

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a plain text message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResetLink appends the token as the "token" query parameter of base.
func ResetLink(base url.URL, token passwordreset.Token) string {
	query := base.Query()
	query.Set("token", string(token))
	base.RawQuery = query.Encode()
	return base.String()
}

// Notifier renders password reset messages and hands them to a Sender.
type Notifier struct {
	sender  Sender
	baseURL url.URL
	ttl     time.Duration
}

func NewNotifier(sender Sender, baseURL url.URL, ttl time.Duration) *Notifier {
	if sender == nil {
		panic("Argument sender must not be nil.")
	}
	return &Notifier{sender: sender, baseURL: baseURL, ttl: ttl}
}

func (n *Notifier) SendResetLink(ctx context.Context, u user.User, token passwordreset.Token) error {
	body, err := render(resetLinkTemplate, map[string]string{
		"Name":      u.DisplayName(),
		"Link":      ResetLink(n.baseURL, token),
		"ExpiresIn": humanizeDuration(n.ttl),
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{To: string(u.Email), Subject: resetLinkSubject, Body: body})
}

func (n *Notifier) SendResetConfirmation(ctx context.Context, u user.User) error {
	body, err := render(resetConfirmationTemplate, map[string]string{"Name": u.DisplayName()})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{To: string(u.Email), Subject: resetConfirmationSubject, Body: body})
}

func render(tmpl *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
