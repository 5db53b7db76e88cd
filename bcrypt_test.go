package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher(t *testing.T) {
	tests := []struct {
		name       string
		workFactor int
		wantCost   int
		wantErr    error
	}{
		{name: "default", workFactor: 0, wantCost: accounts.DefaultWorkFactor},
		{name: "min cost", workFactor: bcrypt.MinCost, wantCost: bcrypt.MinCost},
		{name: "too low", workFactor: bcrypt.MinCost - 1, wantErr: accounts.ErrInvalidWorkFactor},
		{name: "too high", workFactor: bcrypt.MaxCost + 1, wantErr: accounts.ErrInvalidWorkFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := accounts.NewBcryptHasher(tt.workFactor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, h.Cost())
		})
	}
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h, err := accounts.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("correct horsf", hash))
	assert.False(t, h.Verify("", hash))
	assert.False(t, h.Verify("correct horse", ""))
	assert.False(t, h.Verify("correct horse", "not-a-hash"))
}

func TestBcryptHasher_SaltedPerCall(t *testing.T) {
	h, err := accounts.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same password", first))
	assert.True(t, h.Verify("same password", second))
}

func TestBcryptHasher_RejectsEmpty(t *testing.T) {
	h, err := accounts.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("")
	assert.ErrorIs(t, err, accounts.ErrNoEmptyString)
	assert.Empty(t, hash)
}

func TestLooksLikeHash(t *testing.T) {
	h, err := accounts.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("password123")
	require.NoError(t, err)

	assert.True(t, accounts.LooksLikeHash(hash))
	assert.False(t, accounts.LooksLikeHash(""))
	assert.False(t, accounts.LooksLikeHash("password123"))
	assert.False(t, accounts.LooksLikeHash("$2a$"))
}
