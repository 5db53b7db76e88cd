package accounts

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultWorkFactor is the bcrypt cost used when none is configured.
const DefaultWorkFactor = 10

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt at a fixed cost. Every hash
// embeds a fresh random salt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher for the given work factor. Zero selects
// DefaultWorkFactor.
func NewBcryptHasher(workFactor int) (*BcryptHasher, error) {
	if workFactor == 0 {
		workFactor = DefaultWorkFactor
	}

	if workFactor < bcrypt.MinCost || workFactor > bcrypt.MaxCost {
		return nil, ErrInvalidWorkFactor
	}

	return &BcryptHasher{cost: passwordHashCost(workFactor)}, nil
}

// Cost returns the effective bcrypt cost.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash generates a salted hash for plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return string(out), nil
}

// Verify reports whether plaintext matches hash. Empty input, a malformed
// hash or a mismatch all yield false.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if plaintext == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// LooksLikeHash is a best effort structural probe for bcrypt hashes. It
// must not be used to make security decisions.
func LooksLikeHash(candidate string) bool {
	if candidate == "" {
		return false
	}
	_, err := bcrypt.Cost([]byte(candidate))
	return err == nil
}
