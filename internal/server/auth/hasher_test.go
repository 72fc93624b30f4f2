package auth

import (
	"strings"
	"testing"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("never equals plaintext", func(t *testing.T) {
		digest, err := hasher.Hash("supersecret1")
		require.NoError(t, err)
		assert.NotEqual(t, "supersecret1", digest)
		assert.True(t, strings.HasPrefix(digest, "$2a$"))
	})

	t.Run("same password produces different digests", func(t *testing.T) {
		d1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		d2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("records cost", func(t *testing.T) {
		digest, err := NewBcryptHasher(DefaultBcryptCost).Hash("supersecret1")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(digest))
		require.NoError(t, err)
		assert.Equal(t, DefaultBcryptCost, cost)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("x", MaxPasswordBytes+1))
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		ok, err := hasher.Verify("correctpassword", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("other strings do not", func(t *testing.T) {
		for _, candidate := range []string{"", "correctpasswor", "correctpassword ", "CORRECTPASSWORD", "wrongpassword1"} {
			ok, err := hasher.Verify(candidate, digest)
			require.NoError(t, err)
			assert.False(t, ok, candidate)
		}
	})

	t.Run("malformed digest is an error", func(t *testing.T) {
		_, err := hasher.Verify("correctpassword", "not-a-bcrypt-hash")
		assert.ErrorIs(t, err, common.ErrorInternal)

		_, err = hasher.Verify("correctpassword", digest[:20])
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(DefaultBcryptCost).cost)
}

func TestBcryptHasher_HashUsesCost(t *testing.T) {
	digest, err := NewBcryptHasher(bcrypt.MinCost + 1).Hash("correctpassword")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}
