package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const lifecycleTimeout = 10 * time.Second

// Lifecycle applies account state transitions that follow a verified token.
type Lifecycle struct {
	repo   AccountRepository
	hasher CredentialHasher
	policy PasswordPolicy
	logger Logger
	now    func() time.Time
}

// NewLifecycle returns a Lifecycle persisting through repo.
func NewLifecycle(repo AccountRepository, hasher CredentialHasher, policy PasswordPolicy) *Lifecycle {
	return &Lifecycle{
		repo:   repo,
		hasher: hasher,
		policy: policy,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (l *Lifecycle) WithLogger(logger Logger) *Lifecycle {
	l.logger = normalizeLogger(logger)
	return l
}

func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	if now != nil {
		l.now = now
	}
	return l
}

// Activate marks account active. Activating an already active account is
// a successful no-op that performs no write.
func (l *Lifecycle) Activate(ctx context.Context, account *Account) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account activation")
	default:
		return l.activate(ctx, account)
	}
}

func (l *Lifecycle) activate(ctx context.Context, account *Account) (*Account, error) {
	if account == nil {
		return nil, ErrUnauthorized
	}

	if account.Active {
		l.logger.Debug("account already active", "account_id", account.ID.String())
		return account, nil
	}

	ctx, cancel := context.WithTimeout(ctx, lifecycleTimeout)
	defer cancel()

	now := l.now()
	record := account.Clone()
	record.Active = true
	record.ActivatedAt = &now

	if err := l.repo.Activate(ctx, record.ID, now); err != nil {
		l.logger.Error("account activation failed", "account_id", account.ID.String(), "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
	}

	record.UpdatedAt = now
	return record, nil
}

// ResetPassword replaces the credential of account and marks it active.
// A policy failure returns a *ValidationError and leaves the stored hash
// untouched.
func (l *Lifecycle) ResetPassword(ctx context.Context, account *Account, plaintext string) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset")
	default:
		return l.resetPassword(ctx, account, plaintext)
	}
}

func (l *Lifecycle) resetPassword(ctx context.Context, account *Account, plaintext string) (*Account, error) {
	if account == nil {
		return nil, ErrUnauthorized
	}

	if err := l.policy.Validate(account.Email, plaintext); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, lifecycleTimeout)
	defer cancel()

	hash, err := l.hasher.Hash(ctx, plaintext)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := l.now()
	if err := l.repo.ResetPassword(ctx, account.ID, hash, now); err != nil {
		l.logger.Error("password reset persist failed", "account_id", account.ID.String(), "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
	}

	record := account.Clone()
	record.PasswordHash = hash
	record.Active = true
	record.PasswordResetAt = &now
	record.UpdatedAt = now

	return record, nil
}
