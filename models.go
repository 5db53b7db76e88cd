package accounts

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Account is the account model. Email is unique and stored normalized.
type Account struct {
	bun.BaseModel   `bun:"table:accounts,alias:acc"`
	ID              uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Email           string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	Active          bool       `bun:"active,notnull" json:"active"`
	ActivatedAt     *time.Time `bun:"activated_at,nullzero" json:"activated_at,omitempty"`
	PasswordResetAt *time.Time `bun:"password_reset_at,nullzero" json:"password_reset_at,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Clone returns a shallow copy safe to mutate.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Principal is the outcome of a successful authentication.
type Principal struct {
	Email   string
	Account *Account
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks a normalized email address.
func ValidateEmail(email string) error {
	return validation.Validate(email,
		validation.Required,
		validation.Length(3, 254),
		validation.Match(emailPattern).Error("must be a valid email address"),
	)
}
