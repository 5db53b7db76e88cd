package accounts

import "github.com/golang-jwt/jwt/v5"

// Claim names the single purpose a token is good for.
type Claim string

const (
	ClaimAuthenticated Claim = "authenticated"
	ClaimActivate      Claim = "activate"
	ClaimPasswordReset Claim = "passwordReset"
)

// Valid reports whether c is one of the known claims.
func (c Claim) Valid() bool {
	switch c {
	case ClaimAuthenticated, ClaimActivate, ClaimPasswordReset:
		return true
	}
	return false
}

func (c Claim) String() string { return string(c) }

// ClaimTokenClaims is the JWT payload of a claim token. Exactly one of the
// purpose flags is set by the codec; a false or missing flag never grants.
type ClaimTokenClaims struct {
	jwt.RegisteredClaims
	Authenticated bool `json:"authenticated,omitempty"`
	Activate      bool `json:"activate,omitempty"`
	PasswordReset bool `json:"passwordReset,omitempty"`
}

// Has reports whether the token asserts claim with a true value.
func (c *ClaimTokenClaims) Has(claim Claim) bool {
	if c == nil {
		return false
	}
	switch claim {
	case ClaimAuthenticated:
		return c.Authenticated
	case ClaimActivate:
		return c.Activate
	case ClaimPasswordReset:
		return c.PasswordReset
	}
	return false
}

// Asserted returns the claims set on the token.
func (c *ClaimTokenClaims) Asserted() []Claim {
	out := make([]Claim, 0, 1)
	for _, claim := range []Claim{ClaimAuthenticated, ClaimActivate, ClaimPasswordReset} {
		if c.Has(claim) {
			out = append(out, claim)
		}
	}
	return out
}

func (c *ClaimTokenClaims) set(claim Claim) {
	switch claim {
	case ClaimAuthenticated:
		c.Authenticated = true
	case ClaimActivate:
		c.Activate = true
	case ClaimPasswordReset:
		c.PasswordReset = true
	}
}
