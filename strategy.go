package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// StrategyKind names an authentication strategy.
type StrategyKind string

const (
	KindPasswordLogin       StrategyKind = "password-login"
	KindLoginBearer         StrategyKind = "login-bearer"
	KindActivationBearer    StrategyKind = "activation-bearer"
	KindPasswordResetBearer StrategyKind = "password-reset-bearer"
)

// Credentials is the raw input a strategy consumes. Email and Password
// come from basic auth; Token is a bearer token. The password reset
// strategy reads the new password from Password.
type Credentials struct {
	Email    string
	Password string
	Token    string
}

// Strategy turns credentials into a Principal or ErrUnauthorized.
type Strategy interface {
	Kind() StrategyKind
	Authenticate(ctx context.Context, creds Credentials) (*Principal, error)
}

// PasswordLoginStrategy authenticates an email and password pair.
type PasswordLoginStrategy struct {
	repo          AccountRepository
	hasher        CredentialHasher
	requireActive bool
	logger        Logger
	dummyHash     string
}

// NewPasswordLoginStrategy hashes a throwaway secret up front so unknown
// emails are verified against a real hash from the first request.
func NewPasswordLoginStrategy(repo AccountRepository, hasher CredentialHasher, requireActive bool) (*PasswordLoginStrategy, error) {
	if hasher == nil {
		return nil, goerrors.New("password hasher is required", goerrors.CategoryBadInput)
	}

	dummy, err := hasher.Hash(context.Background(), uuid.NewString())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to prepare fallback password hash")
	}

	return &PasswordLoginStrategy{
		repo:          repo,
		hasher:        hasher,
		requireActive: requireActive,
		logger:        defLogger{},
		dummyHash:     dummy,
	}, nil
}

func (s *PasswordLoginStrategy) Kind() StrategyKind { return KindPasswordLogin }

func (s *PasswordLoginStrategy) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	email := NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrUnauthorized
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !goerrors.Is(err, ErrAccountNotFound) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account for login")
		}
		// Spend comparable time on unknown emails.
		if _, err := s.hasher.Verify(ctx, creds.Password, s.dummyHash); err != nil {
			return nil, err
		}
		s.logger.Debug("password login rejected", "reason", "unknown_account")
		return nil, ErrUnauthorized
	}

	ok, err := s.hasher.Verify(ctx, creds.Password, account.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		s.logger.Debug("password login rejected", "reason", "password_mismatch", "account_id", account.ID.String())
		return nil, ErrUnauthorized
	}

	if s.requireActive && !account.Active {
		s.logger.Debug("password login rejected", "reason", "inactive", "account_id", account.ID.String())
		return nil, ErrUnauthorized
	}

	return &Principal{Email: account.Email, Account: account}, nil
}

// LoginBearerStrategy authenticates a login token for an active account.
type LoginBearerStrategy struct {
	repo   AccountRepository
	tokens *TokenService
}

func NewLoginBearerStrategy(repo AccountRepository, tokens *TokenService) *LoginBearerStrategy {
	return &LoginBearerStrategy{repo: repo, tokens: tokens}
}

func (s *LoginBearerStrategy) Kind() StrategyKind { return KindLoginBearer }

func (s *LoginBearerStrategy) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	return bearerPrincipal(ctx, s.tokens, creds.Token, ClaimAuthenticated, s.repo.FindActiveByEmail)
}

// ActivationBearerStrategy authenticates an activation token. The account
// does not need to be active.
type ActivationBearerStrategy struct {
	repo   AccountRepository
	tokens *TokenService
}

func NewActivationBearerStrategy(repo AccountRepository, tokens *TokenService) *ActivationBearerStrategy {
	return &ActivationBearerStrategy{repo: repo, tokens: tokens}
}

func (s *ActivationBearerStrategy) Kind() StrategyKind { return KindActivationBearer }

func (s *ActivationBearerStrategy) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	return bearerPrincipal(ctx, s.tokens, creds.Token, ClaimActivate, s.repo.FindByEmail)
}

// PasswordResetBearerStrategy authenticates a password reset token and
// applies the new password carried in Credentials.Password.
type PasswordResetBearerStrategy struct {
	repo      AccountRepository
	tokens    *TokenService
	lifecycle *Lifecycle
}

func NewPasswordResetBearerStrategy(repo AccountRepository, tokens *TokenService, lifecycle *Lifecycle) *PasswordResetBearerStrategy {
	return &PasswordResetBearerStrategy{repo: repo, tokens: tokens, lifecycle: lifecycle}
}

func (s *PasswordResetBearerStrategy) Kind() StrategyKind { return KindPasswordResetBearer }

func (s *PasswordResetBearerStrategy) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	principal, err := bearerPrincipal(ctx, s.tokens, creds.Token, ClaimPasswordReset, s.repo.FindByEmail)
	if err != nil {
		return nil, err
	}

	account, err := s.lifecycle.ResetPassword(ctx, principal.Account, creds.Password)
	if err != nil {
		return nil, err
	}

	return &Principal{Email: account.Email, Account: account}, nil
}

type accountFinder func(ctx context.Context, email string) (*Account, error)

func bearerPrincipal(ctx context.Context, tokens *TokenService, token string, claim Claim, find accountFinder) (*Principal, error) {
	subject, err := tokens.Verify(token, claim)
	if err != nil {
		return nil, err
	}

	account, err := find(ctx, subject)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			tokens.logger.Debug("claim token rejected", "claim", claim.String(), "reason", "unknown_subject")
			return nil, ErrUnauthorized
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load token subject")
	}

	return &Principal{Email: account.Email, Account: account}, nil
}
