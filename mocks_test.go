package accounts_test

import (
	"context"
	"sync"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository implements accounts.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*accounts.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindActiveByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*accounts.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, account)
	return returnAccount(ctx, args, account)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, account)
	return returnAccount(ctx, args, account)
}

func (m *MockAccountRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAccountRepository) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string, at time.Time) error {
	args := m.Called(ctx, id, passwordHash, at)
	return args.Error(0)
}

// returnAccount supports fixed returns and func(ctx, account) *Account.
func returnAccount(ctx context.Context, args mock.Arguments, account *accounts.Account) (*accounts.Account, error) {
	switch v := args.Get(0).(type) {
	case *accounts.Account:
		return v, args.Error(1)
	case func(context.Context, *accounts.Account) *accounts.Account:
		return v(ctx, account), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier implements accounts.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendActivation(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

// MockLogger implements accounts.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

// recordingNotifier keeps the last token sent per email.
type recordingNotifier struct {
	mu         sync.Mutex
	activation map[string]string
	reset      map[string]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		activation: map[string]string{},
		reset:      map[string]string{},
	}
}

func (n *recordingNotifier) SendActivation(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activation[email] = token
	return nil
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset[email] = token
	return nil
}

func (n *recordingNotifier) activationToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.activation[email]
}

func (n *recordingNotifier) resetToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reset[email]
}

// recordingSink collects activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []accounts.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event accounts.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []accounts.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]accounts.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func testConfig() *accounts.EnvConfig {
	return &accounts.EnvConfig{
		SigningKey:          "test-signing-key-0123456789",
		WorkFactor:          4,
		MaxConcurrentHashes: 4,
	}
}
