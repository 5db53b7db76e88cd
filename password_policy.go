package accounts

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

var (
	errPasswordTooWeak      = errors.New("is not strong enough")
	errPasswordMatchesEmail = errors.New("must not match the email address")
	errPasswordTooLong      = errors.New("must be at most 72 bytes long")
)

// PasswordPolicy decides whether a plaintext may become a credential.
type PasswordPolicy struct {
	MinLength      int
	MinEntropyBits float64
}

// NewPasswordPolicy builds a policy from cfg.
func NewPasswordPolicy(cfg Config) PasswordPolicy {
	return PasswordPolicy{
		MinLength:      cfg.GetPasswordMinLength(),
		MinEntropyBits: cfg.GetPasswordMinEntropyBits(),
	}
}

// Validate returns a *ValidationError keyed by "password" when plaintext is
// unacceptable for the account identified by email.
func (p PasswordPolicy) Validate(email, plaintext string) error {
	return NewValidationError(validation.Errors{
		"password": p.Rule(email, plaintext),
	}.Filter())
}

// Rule checks plaintext and returns the first rule failure.
func (p PasswordPolicy) Rule(email, plaintext string) error {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}

	return validation.Validate(plaintext,
		validation.Required,
		validation.Length(minLength, maxPasswordBytes),
		validation.By(withinBcryptLimit),
		validation.By(notDerivedFromEmail(email)),
		validation.By(p.strongEnough),
	)
}

func (p PasswordPolicy) strongEnough(value any) error {
	if p.MinEntropyBits <= 0 {
		return nil
	}

	s, _ := value.(string)
	if err := passwordvalidator.Validate(s, p.MinEntropyBits); err != nil {
		return errPasswordTooWeak
	}
	return nil
}

func withinBcryptLimit(value any) error {
	if s, _ := value.(string); len(s) > maxPasswordBytes {
		return errPasswordTooLong
	}
	return nil
}

func notDerivedFromEmail(email string) validation.RuleFunc {
	email = NormalizeEmail(email)
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}

	return func(value any) error {
		s, _ := value.(string)
		if email == "" || s == "" {
			return nil
		}

		candidate := strings.ToLower(s)
		if candidate == email || candidate == local {
			return errPasswordMatchesEmail
		}
		return nil
	}
}
