package httpapi

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrMalformedBasicAuth is returned for a missing or undecodable basic
// authorization header.
var ErrMalformedBasicAuth = errors.New("missing or malformed basic authorization")

// basicCredentials reads email and password from the Authorization header.
func basicCredentials(c *fiber.Ctx) (string, string, error) {
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) <= 6 || !strings.EqualFold(auth[:6], "basic ") {
		return "", "", ErrMalformedBasicAuth
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(auth[6:]))
	if err != nil {
		return "", "", ErrMalformedBasicAuth
	}

	email, password, ok := strings.Cut(string(raw), ":")
	if !ok || email == "" {
		return "", "", ErrMalformedBasicAuth
	}

	return email, password, nil
}
