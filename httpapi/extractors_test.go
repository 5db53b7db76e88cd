package httpapi

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runExtract(t *testing.T, extractors []TokenExtractor, req *http.Request) (string, error) {
	t.Helper()

	var (
		token string
		err   error
	)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, err = ExtractToken(c, extractors)
		return nil
	})

	_, testErr := app.Test(req)
	require.NoError(t, testErr)
	return token, err
}

func TestExtractToken_DefaultLookup(t *testing.T) {
	extractors := GetExtractors(DefaultTokenLookup)
	require.Len(t, extractors, 2)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	token, err := runExtract(t, extractors, req)
	require.NoError(t, err)
	assert.Equal(t, "header-token", token)

	req = httptest.NewRequest(http.MethodGet, "/?token=query-token", nil)
	token, err = runExtract(t, extractors, req)
	require.NoError(t, err)
	assert.Equal(t, "query-token", token)

	req = httptest.NewRequest(http.MethodGet, "/?token=query-token", nil)
	req.Header.Set("Authorization", "bearer header-token")
	token, err = runExtract(t, extractors, req)
	require.NoError(t, err)
	assert.Equal(t, "header-token", token, "header wins and the scheme is case insensitive")
}

func TestExtractToken_Missing(t *testing.T) {
	extractors := GetExtractors(DefaultTokenLookup)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearerabc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		_, err := runExtract(t, extractors, req)
		assert.ErrorIs(t, err, ErrTokenMissingOrMalformed, header)
	}
}

func TestGetExtractors_CookieAndCustomScheme(t *testing.T) {
	extractors := GetExtractors("header:X-Auth, cookie:jwt, bogus", "Token")
	require.Len(t, extractors, 2)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth", "Token custom")
	token, err := runExtract(t, extractors, req)
	require.NoError(t, err)
	assert.Equal(t, "custom", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})
	token, err = runExtract(t, extractors, req)
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", token)
}

func TestBasicCredentials(t *testing.T) {
	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name     string
		header   string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid", header: "Basic " + encode("a@b.co:secret"), email: "a@b.co", password: "secret"},
		{name: "colon in password", header: "basic " + encode("a@b.co:se:cret"), email: "a@b.co", password: "se:cret"},
		{name: "empty password", header: "Basic " + encode("a@b.co:"), email: "a@b.co"},
		{name: "no colon", header: "Basic " + encode("a@b.co"), wantErr: true},
		{name: "empty email", header: "Basic " + encode(":secret"), wantErr: true},
		{name: "bad base64", header: "Basic ***", wantErr: true},
		{name: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				email, password string
				err             error
			)

			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				email, password, err = basicCredentials(c)
				return nil
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, testErr := app.Test(req)
			require.NoError(t, testErr)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedBasicAuth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, email)
			assert.Equal(t, tt.password, password)
		})
	}
}
