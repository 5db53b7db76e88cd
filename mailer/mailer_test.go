package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	texttemplate "text/template"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func testConfig() Config {
	return Config{
		ServiceName:      "Acme",
		From:             "no-reply@acme.test",
		ActivationURL:    "https://acme.test/activate",
		PasswordResetURL: "https://acme.test/reset?lang=en",
	}
}

func TestSendActivation(t *testing.T) {
	dialer := &fakeDialer{}
	s := NewSender(testConfig()).WithDialer(dialer)

	require.NoError(t, s.SendActivation(context.Background(), "a@b.co", "tok.en.value"))
	require.Len(t, dialer.sent, 1)

	m := dialer.sent[0]
	assert.Equal(t, []string{"a@b.co"}, m.GetHeader("To"))
	assert.Equal(t, []string{"no-reply@acme.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{"Activate your new Acme account"}, m.GetHeader("Subject"))
}

func TestSendPasswordReset(t *testing.T) {
	dialer := &fakeDialer{}
	s := NewSender(testConfig()).WithDialer(dialer)

	require.NoError(t, s.SendPasswordReset(context.Background(), "a@b.co", "reset-token"))
	require.Len(t, dialer.sent, 1)
	assert.Equal(t, []string{"Password reset requested for your Acme account"}, dialer.sent[0].GetHeader("Subject"))
}

func TestSandboxModeSkipsDialer(t *testing.T) {
	cfg := testConfig()
	cfg.SandboxMode = true

	dialer := &fakeDialer{err: errors.New("must not be called")}
	s := NewSender(cfg).WithDialer(dialer)

	assert.NoError(t, s.SendActivation(context.Background(), "a@b.co", "tok"))
	assert.NoError(t, s.SendPasswordReset(context.Background(), "a@b.co", "tok"))
	assert.Empty(t, dialer.sent)
}

func TestSendErrors(t *testing.T) {
	refused := errors.New("connection refused")
	dialer := &fakeDialer{err: refused}
	s := NewSender(testConfig()).WithDialer(dialer)

	err := s.SendActivation(context.Background(), "a@b.co", "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, refused)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
	assert.Contains(t, err.Error(), "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SendActivation(ctx, "a@b.co", "tok"), context.Canceled)

	cfg := testConfig()
	cfg.ActivationURL = "://bad"
	err = NewSender(cfg).WithDialer(dialer).SendActivation(context.Background(), "a@b.co", "tok")
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestBuildMessageTemplateError(t *testing.T) {
	s := NewSender(testConfig())
	broken := texttemplate.Must(texttemplate.New("broken.txt").Parse("{{.Missing}}"))

	_, err := s.buildMessage("a@b.co", "subject", broken, activationHTML, templateData{})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryInternal))
	assert.Contains(t, err.Error(), "broken.txt")
}

func TestTokenLink(t *testing.T) {
	link, err := tokenLink("https://acme.test/activate", "a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.test/activate?token=a.b.c", link)

	link, err = tokenLink("https://acme.test/reset?lang=en&token=stale", "fresh")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.test/reset?lang=en&token=fresh", link)
}

func TestTemplatesIncludeLink(t *testing.T) {
	data := templateData{ServiceName: "Acme", Link: "https://acme.test/activate?token=abc"}

	var buf bytes.Buffer
	require.NoError(t, activationText.Execute(&buf, data))
	assert.Contains(t, buf.String(), data.Link)
	assert.Contains(t, buf.String(), "Acme")

	buf.Reset()
	require.NoError(t, activationHTML.Execute(&buf, data))
	assert.Contains(t, buf.String(), `href="https://acme.test/activate?token=abc"`)
	assert.Contains(t, buf.String(), "Activate Now")

	buf.Reset()
	require.NoError(t, passwordResetHTML.Execute(&buf, data))
	assert.Contains(t, buf.String(), "Reset Password")
}
