package accounts

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// Auther wires the hasher, the token codec, the strategies and the
// lifecycle operations behind one facade.
type Auther struct {
	repo         AccountRepository
	tokens       *TokenService
	hasher       *HashPool
	policy       PasswordPolicy
	lifecycle    *Lifecycle
	logger       Logger
	notifier     Notifier
	activitySink ActivitySink
	hashidIDs    bool

	passwordLogin    *PasswordLoginStrategy
	loginBearer      *LoginBearerStrategy
	activationBearer *ActivationBearerStrategy
	resetBearer      *PasswordResetBearerStrategy
}

// NewAuthenticator returns an Auther backed by repo and configured by cfg.
func NewAuthenticator(repo AccountRepository, cfg Config) (*Auther, error) {
	if repo == nil {
		return nil, goerrors.New("account repository is required", goerrors.CategoryInternal)
	}

	if cfg.GetSigningKey() == "" {
		return nil, goerrors.New("signing key is required", goerrors.CategoryInternal)
	}

	bc, err := NewBcryptHasher(cfg.GetWorkFactor())
	if err != nil {
		return nil, err
	}

	hasher := NewHashPool(bc, cfg.GetMaxConcurrentHashes())
	policy := NewPasswordPolicy(cfg)
	tokens := NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(), TokenTTLs{
		Login:         cfg.GetLoginTokenTTL(),
		Activation:    cfg.GetActivationTokenTTL(),
		PasswordReset: cfg.GetPasswordResetTokenTTL(),
	}, defLogger{})
	lifecycle := NewLifecycle(repo, hasher, policy)

	passwordLogin, err := NewPasswordLoginStrategy(repo, hasher, cfg.GetLoginRequiresActive())
	if err != nil {
		return nil, err
	}

	return &Auther{
		repo:             repo,
		tokens:           tokens,
		hasher:           hasher,
		policy:           policy,
		lifecycle:        lifecycle,
		logger:           defLogger{},
		notifier:         noopNotifier{},
		activitySink:     noopActivitySink{},
		hashidIDs:        cfg.GetHashidAccountIDs(),
		passwordLogin:    passwordLogin,
		loginBearer:      NewLoginBearerStrategy(repo, tokens),
		activationBearer: NewActivationBearerStrategy(repo, tokens),
		resetBearer:      NewPasswordResetBearerStrategy(repo, tokens, lifecycle),
	}, nil
}

// WithLogger sets the logger on the Auther and every component it owns.
func (s *Auther) WithLogger(logger Logger) *Auther {
	logger = normalizeLogger(logger)
	s.logger = logger
	s.tokens.logger = logger
	s.lifecycle.WithLogger(logger)
	s.passwordLogin.logger = logger
	return s
}

// WithNotifier configures how activation and reset tokens are delivered.
func (s *Auther) WithNotifier(notifier Notifier) *Auther {
	s.notifier = normalizeNotifier(notifier)
	return s
}

// WithActivitySink configures an ActivitySink for emitting account events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithHashidAccountIDs derives new account IDs from the email address.
func (s *Auther) WithHashidAccountIDs(enabled bool) *Auther {
	s.hashidIDs = enabled
	return s
}

// TokenService returns the TokenService used by this Auther.
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// Lifecycle returns the lifecycle operations used by this Auther.
func (s *Auther) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Strategy returns the strategy registered for kind.
func (s *Auther) Strategy(kind StrategyKind) (Strategy, error) {
	switch kind {
	case KindPasswordLogin:
		return s.passwordLogin, nil
	case KindLoginBearer:
		return s.loginBearer, nil
	case KindActivationBearer:
		return s.activationBearer, nil
	case KindPasswordResetBearer:
		return s.resetBearer, nil
	}
	return nil, ErrUnknownStrategy
}

// Authenticate dispatches creds to the strategy named by kind.
func (s *Auther) Authenticate(ctx context.Context, kind StrategyKind, creds Credentials) (*Principal, error) {
	strategy, err := s.Strategy(kind)
	if err != nil {
		return nil, err
	}
	return strategy.Authenticate(ctx, creds)
}

// Register validates and stores a new inactive account, then sends an
// activation token. Any storage failure, duplicate email included, returns
// ErrAccountCreation.
func (s *Auther) Register(ctx context.Context, email, password string) (*Account, error) {
	email = NormalizeEmail(email)

	if err := NewValidationError(validation.Errors{
		"email":    ValidateEmail(email),
		"password": s.policy.Rule(email, password),
	}.Filter()); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.logger.Error("Register hash password error", "error", err)
		return nil, ErrAccountCreation
	}

	account := &Account{Email: email, PasswordHash: hash}
	if s.hashidIDs {
		if id, err := hashid.NewUUID(email); err == nil {
			account.ID = id
		}
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if goerrors.Is(err, ErrAccountConflict) {
			s.logger.Info("Register rejected duplicate email")
		} else {
			s.logger.Error("Register create account error", "error", err)
		}
		return nil, ErrAccountCreation
	}

	s.emit(ctx, ActivityEventAccountRegistered, created, nil)

	token, err := s.tokens.IssueActivationToken(created.Email)
	if err != nil {
		s.logger.Error("Register issue activation token error", "error", err)
		return created, nil
	}

	if err := s.notifier.SendActivation(ctx, created.Email, token); err != nil {
		s.logger.Warn("Register activation notification failed", "account_id", created.ID.String(), "error", err)
	}

	return created, nil
}

// Login verifies an email and password pair and returns a login token.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	principal, err := s.passwordLogin.Authenticate(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		s.emit(ctx, ActivityEventLoginFailure, nil, map[string]any{"error": err.Error()})
		return "", err
	}

	token, err := s.tokens.IssueLoginToken(principal.Email)
	if err != nil {
		s.logger.Error("Login issue token error", "error", err)
		s.emit(ctx, ActivityEventLoginFailure, principal.Account, map[string]any{"error": err.Error()})
		return "", err
	}

	s.emit(ctx, ActivityEventLoginSuccess, principal.Account, nil)
	return token, nil
}

// Current resolves a login token to its active account.
func (s *Auther) Current(ctx context.Context, token string) (*Principal, error) {
	return s.loginBearer.Authenticate(ctx, Credentials{Token: token})
}

// Activate consumes an activation token and activates its account.
func (s *Auther) Activate(ctx context.Context, token string) (*Account, error) {
	principal, err := s.activationBearer.Authenticate(ctx, Credentials{Token: token})
	if err != nil {
		return nil, err
	}

	wasActive := principal.Account.Active
	account, err := s.lifecycle.Activate(ctx, principal.Account)
	if err != nil {
		return nil, err
	}

	if !wasActive {
		s.emit(ctx, ActivityEventAccountActivated, account, nil)
	}

	return account, nil
}

// ResetPassword consumes a password reset token and stores newPassword.
func (s *Auther) ResetPassword(ctx context.Context, token, newPassword string) (*Account, error) {
	principal, err := s.resetBearer.Authenticate(ctx, Credentials{Token: token, Password: newPassword})
	if err != nil {
		if _, ok := AsValidationError(err); ok {
			s.emit(ctx, ActivityEventPasswordResetFailure, nil, map[string]any{"error": "validation"})
		}
		return nil, err
	}

	s.emit(ctx, ActivityEventPasswordResetSuccess, principal.Account, nil)
	return principal.Account, nil
}

// RequestPasswordReset sends a password reset token when email belongs to
// an account. It never reports whether the account exists.
func (s *Auther) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !goerrors.Is(err, ErrAccountNotFound) {
			s.logger.Error("RequestPasswordReset lookup error", "error", err)
		}
		return nil
	}

	token, err := s.tokens.IssuePasswordResetToken(account.Email)
	if err != nil {
		s.logger.Error("RequestPasswordReset issue token error", "error", err)
		return nil
	}

	if err := s.notifier.SendPasswordReset(ctx, account.Email, token); err != nil {
		s.logger.Warn("RequestPasswordReset notification failed", "account_id", account.ID.String(), "error", err)
	}

	s.emit(ctx, ActivityEventPasswordResetRequested, account, nil)
	return nil
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, account *Account, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actorFromAccount(account),
		Metadata:   metadata,
		OccurredAt: s.lifecycle.now(),
	}

	if account != nil {
		event.AccountID = account.ID.String()
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := normalizeActivitySink(s.activitySink).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}
