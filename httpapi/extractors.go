package httpapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultTokenLookup reads a bearer token from the Authorization header and
// falls back to the token query parameter.
const DefaultTokenLookup = "header:Authorization,query:token"

// ErrTokenMissingOrMalformed is returned when no extractor yields a token.
var ErrTokenMissingOrMalformed = errors.New("missing or malformed token")

// TokenExtractor pulls a raw token from a request.
type TokenExtractor func(c *fiber.Ctx) (string, error)

// GetExtractors parses a lookup definition such as
// "header:Authorization,query:token,cookie:jwt".
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

// ExtractToken returns the first token found by extractors.
func ExtractToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	for _, extract := range extractors {
		if token, err := extract(c); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrTokenMissingOrMalformed
}

func tokenFromHeader(header string, authScheme string) TokenExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrTokenMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
