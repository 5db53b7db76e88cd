package accounts

import (
	"context"
	"runtime"

	"github.com/goliatone/go-errors"
	"golang.org/x/sync/semaphore"
)

// HashPool bounds how many hashes run at once so bursts of logins cannot
// starve the rest of the process. Work is abandoned, not interrupted, when
// the context is done: the slot stays taken until the hash finishes and the
// result is discarded.
type HashPool struct {
	hasher PasswordHasher
	sem    *semaphore.Weighted
	size   int
}

// NewHashPool wraps hasher. A size below one uses GOMAXPROCS.
func NewHashPool(hasher PasswordHasher, size int) *HashPool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &HashPool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
	}
}

// Size returns the maximum number of concurrent hash operations.
func (p *HashPool) Size() int {
	return p.size
}

type hashResult struct {
	hash string
	ok   bool
	err  error
}

// Hash hashes plaintext on the pool.
func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrNoEmptyString
	}

	res, err := p.run(ctx, func() hashResult {
		h, err := p.hasher.Hash(plaintext)
		return hashResult{hash: h, err: err}
	})
	if err != nil {
		return "", err
	}

	return res.hash, res.err
}

// Verify compares plaintext against hash on the pool. The error is only set
// when the context ended before the comparison completed.
func (p *HashPool) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	res, err := p.run(ctx, func() hashResult {
		return hashResult{ok: p.hasher.Verify(plaintext, hash)}
	})
	if err != nil {
		return false, err
	}

	return res.ok, nil
}

func (p *HashPool) run(ctx context.Context, fn func() hashResult) (hashResult, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return hashResult{}, errors.Wrap(err, errors.CategoryOperation, "context cancelled waiting for hash slot")
	}

	out := make(chan hashResult, 1)
	go func() {
		defer p.sem.Release(1)
		out <- fn()
	}()

	select {
	case <-ctx.Done():
		return hashResult{}, errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during password hashing")
	case res := <-out:
		return res, nil
	}
}
