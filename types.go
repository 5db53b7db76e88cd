package accounts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Logger is the structured logger used across the package. Args are
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the options needed to wire an Auther.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetWorkFactor() int
	GetLoginTokenTTL() time.Duration
	GetActivationTokenTTL() time.Duration
	GetPasswordResetTokenTTL() time.Duration
	GetPasswordMinLength() int
	GetPasswordMinEntropyBits() float64
	GetLoginRequiresActive() bool
	GetMaxConcurrentHashes() int
	GetHashidAccountIDs() bool
}

// PasswordHasher is a synchronous one-way password hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// CredentialHasher hashes and verifies passwords honoring context
// cancellation.
type CredentialHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// AccountRepository is the persistence boundary for accounts. Lookups return
// ErrAccountNotFound when nothing matches and Create returns
// ErrAccountConflict for a duplicate email.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindActiveByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
	Activate(ctx context.Context, id uuid.UUID, at time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string, at time.Time) error
}

// Notifier delivers tokens to account holders.
type Notifier interface {
	SendActivation(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts a slog.Logger to Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

type defLogger struct{}

func (defLogger) Debug(msg string, args ...any) { slog.Default().Debug("ACCOUNTS "+msg, args...) }
func (defLogger) Info(msg string, args ...any)  { slog.Default().Info("ACCOUNTS "+msg, args...) }
func (defLogger) Warn(msg string, args ...any)  { slog.Default().Warn("ACCOUNTS "+msg, args...) }
func (defLogger) Error(msg string, args ...any) { slog.Default().Error("ACCOUNTS "+msg, args...) }

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
