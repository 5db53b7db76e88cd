package mailer

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	texttemplate "text/template"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

// Dialer sends fully built messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds the sender settings.
type Config struct {
	ServiceName      string
	From             string
	ActivationURL    string
	PasswordResetURL string
	SandboxMode      bool

	Host     string
	Port     int
	Username string
	Password string
}

// Sender delivers activation and password reset links by email.
type Sender struct {
	cfg    Config
	dialer Dialer
	logger accounts.Logger
}

var _ accounts.Notifier = (*Sender)(nil)

// NewSender returns a Sender using an SMTP dialer built from cfg.
func NewSender(cfg Config) *Sender {
	return &Sender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: accounts.NewSlogLogger(nil),
	}
}

func (s *Sender) WithDialer(d Dialer) *Sender {
	if d != nil {
		s.dialer = d
	}
	return s
}

func (s *Sender) WithLogger(logger accounts.Logger) *Sender {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Sender) SendActivation(ctx context.Context, email, token string) error {
	link, err := tokenLink(s.cfg.ActivationURL, token)
	if err != nil {
		return err
	}

	return s.send(ctx, email,
		fmt.Sprintf("Activate your new %s account", s.cfg.ServiceName),
		activationText, activationHTML,
		templateData{ServiceName: s.cfg.ServiceName, Link: link},
	)
}

func (s *Sender) SendPasswordReset(ctx context.Context, email, token string) error {
	link, err := tokenLink(s.cfg.PasswordResetURL, token)
	if err != nil {
		return err
	}

	return s.send(ctx, email,
		fmt.Sprintf("Password reset requested for your %s account", s.cfg.ServiceName),
		passwordResetText, passwordResetHTML,
		templateData{ServiceName: s.cfg.ServiceName, Link: link},
	)
}

// buildMessage renders a message without sending it.
func (s *Sender) buildMessage(to, subject string, text *texttemplate.Template, html *htmltemplate.Template, data templateData) (*gomail.Message, error) {
	var textBody, htmlBody bytes.Buffer

	if err := text.Execute(&textBody, data); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute template "+text.Name())
	}

	if err := html.Execute(&htmlBody, data); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute template "+html.Name())
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody.String())
	m.AddAlternative("text/html", htmlBody.String())

	return m, nil
}

func (s *Sender) send(ctx context.Context, to, subject string, text *texttemplate.Template, html *htmltemplate.Template, data templateData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildMessage(to, subject, text, html, data)
	if err != nil {
		return err
	}

	if s.cfg.SandboxMode {
		s.logger.Info("email sandbox mode, message not sent", "to", to, "subject", subject)
		return nil
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "failed to send email")
	}

	return nil
}

func tokenLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid link base url").
			WithMetadata(map[string]any{"base_url": base})
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
