package accounts

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

const pgUniqueViolation = "23505"

// Accounts is the bun backed AccountRepository. Generic CRUD comes from the
// embedded repository; column scoped writes are raw bun statements. Every
// method has a Tx variant that runs against the given bun.IDB.
type Accounts struct {
	repository.Repository[*Account]
	db  *bun.DB
	now func() time.Time
}

var _ AccountRepository = (*Accounts)(nil)

// NewAccountsRepository returns a repository using db.
func NewAccountsRepository(db *bun.DB) *Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &Accounts{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
}

// EnsureSchema creates the accounts table if it does not exist.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create accounts table")
	}
	return nil
}

// RunInTx runs fn inside a transaction. Pass tx to the Tx methods.
func (r *Accounts) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return r.db.RunInTx(ctx, opts, fn)
	}
}

func (r *Accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.FindByEmailTx(ctx, r.db, email)
}

func (r *Accounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return r.findOne(ctx, tx, email)
}

func (r *Accounts) FindActiveByEmail(ctx context.Context, email string) (*Account, error) {
	return r.FindActiveByEmailTx(ctx, r.db, email)
}

func (r *Accounts) FindActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return r.findOne(ctx, tx, email, activeOnly)
}

func activeOnly(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.active = ?", true)
}

func (r *Accounts) findOne(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrAccountNotFound
	}

	record := &Account{}
	q := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email)

	for _, c := range criteria {
		q.Apply(c)
	}

	if err := q.Limit(1).Scan(ctx); err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}

	return record, nil
}

func (r *Accounts) Create(ctx context.Context, account *Account) (*Account, error) {
	return r.CreateTx(ctx, r.db, account)
}

// CreateTx inserts account, assigning an ID when it has none.
func (r *Accounts) CreateTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	if account == nil {
		return nil, errors.New("account is required", errors.CategoryBadInput)
	}

	record := account.Clone()
	r.prepareAccountDefaults(record)

	created, err := r.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAccountConflict
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert account")
	}

	return created, nil
}

func (r *Accounts) Save(ctx context.Context, account *Account) (*Account, error) {
	return r.SaveTx(ctx, r.db, account)
}

// SaveTx updates an existing account by ID. An account without an ID is
// created instead. Every column is written, so callers changing a single
// field should prefer the column scoped methods.
func (r *Accounts) SaveTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	if account == nil {
		return nil, errors.New("account is required", errors.CategoryBadInput)
	}

	if account.ID == uuid.Nil {
		return r.CreateTx(ctx, tx, account)
	}

	exists, err := tx.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", account.ID).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	record := account.Clone()
	record.Email = NormalizeEmail(record.Email)
	record.UpdatedAt = r.now()

	updated, err := r.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		switch {
		case isNotFound(err):
			return nil, ErrAccountNotFound
		case isUniqueViolation(err):
			return nil, ErrAccountConflict
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update account")
	}

	if updated == nil {
		return record, nil
	}
	return updated, nil
}

func (r *Accounts) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.ActivateTx(ctx, r.db, id, at)
}

// ActivateTx flips the active flag and stamps activated_at. No other
// column is touched, so a password stored concurrently survives.
func (r *Accounts) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("active = ?", true).
		Set("activated_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to activate account")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *Accounts) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string, at time.Time) error {
	return r.ResetPasswordTx(ctx, r.db, id, passwordHash, at)
}

// ResetPasswordTx stores a new hash and marks the account active in a
// single statement.
func (r *Accounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, at time.Time) error {
	if passwordHash == "" {
		return ErrNoEmptyString
	}

	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("active = ?", true).
		Set("password_reset_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update account password")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *Accounts) prepareAccountDefaults(record *Account) {
	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := r.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
