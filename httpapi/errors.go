package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
)

const (
	codeBadRequest     = "BadRequest"
	codeNotFound       = "NotFound"
	codeInternalServer = "InternalServer"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Errors map[string][]string `json:"errors"`
}

func baseError(code string) ErrorBody {
	return ErrorBody{Errors: map[string][]string{"base": {code}}}
}

// ErrorHandler renders handler errors without leaking internal detail.
func ErrorHandler(logger accounts.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = accounts.NewSlogLogger(nil)
	}

	return func(c *fiber.Ctx, err error) error {
		if vErr, ok := accounts.AsValidationError(err); ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorBody{Errors: vErr.FieldMessages()})
		}

		switch {
		case errors.Is(err, ErrMalformedBasicAuth):
			return c.Status(fiber.StatusBadRequest).JSON(baseError(codeBadRequest))
		case errors.Is(err, ErrTokenMissingOrMalformed), goerrors.Is(err, accounts.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(baseError(accounts.ErrUnauthorized.TextCode))
		case goerrors.Is(err, accounts.ErrAccountCreation):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(baseError(accounts.ErrAccountCreation.TextCode))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := codeInternalServer
			switch fe.Code {
			case fiber.StatusBadRequest:
				code = codeBadRequest
			case fiber.StatusNotFound:
				code = codeNotFound
			}
			return c.Status(fe.Code).JSON(baseError(code))
		}

		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(baseError(codeInternalServer))
	}
}
