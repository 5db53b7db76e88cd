package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SigningMethod is the algorithm every claim token is signed and verified with.
var SigningMethod = jwt.SigningMethodHS512

// TokenTTLs are the default lifetimes per claim.
type TokenTTLs struct {
	Login         time.Duration
	Activation    time.Duration
	PasswordReset time.Duration
}

// For returns the configured lifetime for claim, falling back to the
// package defaults.
func (t TokenTTLs) For(claim Claim) time.Duration {
	switch claim {
	case ClaimAuthenticated:
		return durationOr(t.Login, DefaultLoginTokenTTL)
	case ClaimActivate:
		return durationOr(t.Activation, DefaultActivationTokenTTL)
	case ClaimPasswordReset:
		return durationOr(t.PasswordReset, DefaultPasswordResetTokenTTL)
	}
	return 0
}

// TokenService issues and verifies single purpose claim tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttls       TokenTTLs
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService signing with signingKey.
func NewTokenService(signingKey []byte, issuer string, ttls TokenTTLs, logger Logger) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		issuer:     issuer,
		ttls:       ttls,
		logger:     normalizeLogger(logger),
		now:        time.Now,
	}
}

// WithClock overrides the time source used for issuing and verifying.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		ts.now = now
	}
	return ts
}

// TTL returns the default lifetime for claim.
func (ts *TokenService) TTL(claim Claim) time.Duration {
	return ts.ttls.For(claim)
}

// Issue signs a token asserting claim for subject. A zero ttl uses the
// claim default. A negative ttl yields a token that is already expired.
func (ts *TokenService) Issue(claim Claim, subject string, ttl time.Duration) (string, error) {
	if !claim.Valid() {
		return "", ErrInvalidClaim
	}

	subject = NormalizeEmail(subject)
	if subject == "" {
		return "", ErrNoEmptyString
	}

	if len(ts.signingKey) == 0 {
		return "", errors.New("signing key is required", errors.CategoryInternal)
	}

	if ttl == 0 {
		ttl = ts.ttls.For(claim)
	}

	now := ts.now()
	claims := &ClaimTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	claims.set(claim)

	token := jwt.NewWithClaims(SigningMethod, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

func (ts *TokenService) IssueLoginToken(subject string) (string, error) {
	return ts.Issue(ClaimAuthenticated, subject, 0)
}

func (ts *TokenService) IssueActivationToken(subject string) (string, error) {
	return ts.Issue(ClaimActivate, subject, 0)
}

func (ts *TokenService) IssuePasswordResetToken(subject string) (string, error) {
	return ts.Issue(ClaimPasswordReset, subject, 0)
}

// Verify checks token and returns its subject when the signature matches,
// the token has not expired and claim is asserted as true. Every failure
// returns ErrUnauthorized; the cause is only logged at debug level.
func (ts *TokenService) Verify(token string, claim Claim) (string, error) {
	if token == "" {
		return "", ts.reject(claim, "missing")
	}

	if !claim.Valid() {
		return "", ts.reject(claim, "unknown_claim")
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &ClaimTokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return "", ts.reject(claim, rejectReason(err))
	}

	claims, ok := parsed.Claims.(*ClaimTokenClaims)
	if !ok || !parsed.Valid {
		return "", ts.reject(claim, "undecodable")
	}

	if !claims.Has(claim) {
		return "", ts.reject(claim, "claim_not_asserted")
	}

	subject := NormalizeEmail(claims.Subject)
	if subject == "" {
		return "", ts.reject(claim, "missing_subject")
	}

	return subject, nil
}

func (ts *TokenService) reject(claim Claim, reason string) error {
	ts.logger.Debug("claim token rejected", "claim", claim.String(), "reason", reason)
	return ErrUnauthorized
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing_expiry"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "bad_issuer"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	}
	return "invalid"
}
