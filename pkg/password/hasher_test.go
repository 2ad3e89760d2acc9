package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/password"
)

func TestHasher(t *testing.T) {
	t.Parallel()

	// Low cost keeps the test fast; production uses DefaultCost.
	h := password.NewHasher(password.WithCost(4))

	t.Run("hash and verify round trip", func(t *testing.T) {
		t.Parallel()

		hash, err := h.Hash("StrongPass123!@#")
		require.NoError(t, err)
		assert.NotEqual(t, "StrongPass123!@#", hash)
		assert.True(t, h.Verify("StrongPass123!@#", hash))
	})

	t.Run("wrong password fails verification", func(t *testing.T) {
		t.Parallel()

		hash, err := h.Hash("correct-horse")
		require.NoError(t, err)
		assert.False(t, h.Verify("wrong-horse", hash))
	})

	t.Run("empty password rejected", func(t *testing.T) {
		t.Parallel()

		_, err := h.Hash("")
		assert.ErrorIs(t, err, password.ErrEmptyPassword)
	})

	t.Run("malformed hash treated as mismatch", func(t *testing.T) {
		t.Parallel()

		assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
	})
}
