package accounts

import (
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized        = "Unauthorized"
	TextCodeUnprocessableEntity = "UnprocessableEntity"
	TextCodeNotFound            = "NotFound"
	TextCodeConflict            = "Conflict"
	TextCodeBadRequest          = "BadRequest"
	TextCodeValidation          = "ValidationFailed"
)

// ErrUnauthorized is the single opaque outcome for every credential, token
// or subject failure. Callers must not be able to tell the causes apart.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrAccountCreation is returned for any failure while creating an account,
// duplicate emails included.
var ErrAccountCreation = errors.New("account could not be created", errors.CategoryOperation).
	WithTextCode(TextCodeUnprocessableEntity).
	WithCode(http.StatusUnprocessableEntity)

// ErrAccountNotFound is returned by repositories when no account matches.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrAccountConflict is returned by repositories on a duplicate email.
var ErrAccountConflict = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeConflict).
	WithCode(errors.CodeConflict)

// ErrNoEmptyString is returned when an empty value is given for hashing or signing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithTextCode(TextCodeBadRequest).
	WithCode(errors.CodeBadRequest)

// ErrInvalidClaim is returned when issuing a token for an unknown claim.
var ErrInvalidClaim = errors.New("unknown token claim", errors.CategoryBadInput).
	WithTextCode(TextCodeBadRequest).
	WithCode(errors.CodeBadRequest)

// ErrInvalidWorkFactor is returned for a bcrypt cost outside the supported range.
var ErrInvalidWorkFactor = errors.New("invalid hash work factor", errors.CategoryBadInput).
	WithTextCode(TextCodeBadRequest).
	WithCode(errors.CodeBadRequest)

// ErrUnknownStrategy is returned when dispatching an unsupported strategy kind.
var ErrUnknownStrategy = errors.New("unknown authentication strategy", errors.CategoryBadInput).
	WithTextCode(TextCodeBadRequest).
	WithCode(errors.CodeBadRequest)

// ValidationError carries per field rule failures. It is the only error
// kind whose detail is meant to reach the client.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields.Error()
}

// FieldMessages flattens the field errors into a field to messages map.
// Nested field names are joined with a dot.
func (e *ValidationError) FieldMessages() map[string][]string {
	out := map[string][]string{}
	if e == nil {
		return out
	}
	flattenValidationErrors("", e.Fields, out)
	return out
}

// Field returns the message for a single field, or an empty string.
func (e *ValidationError) Field(name string) string {
	msgs := e.FieldMessages()[name]
	if len(msgs) == 0 {
		return ""
	}
	return strings.Join(msgs, ", ")
}

// NewValidationError wraps ozzo field errors. Nil or empty input returns nil
// and any other error is returned unchanged.
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		return err
	}

	if len(fields) == 0 {
		return nil
	}

	return &ValidationError{Fields: fields}
}

// AsValidationError reports whether err is a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

func flattenValidationErrors(prefix string, fields validation.Errors, out map[string][]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		err := fields[k]
		if err == nil {
			continue
		}

		name := k
		if prefix != "" {
			name = prefix + "." + k
		}

		if nested, ok := err.(validation.Errors); ok {
			flattenValidationErrors(name, nested, out)
			continue
		}
		out[name] = append(out[name], err.Error())
	}
}
