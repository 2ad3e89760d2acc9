package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authkit/pkg/password"
)

func TestValidateStrength(t *testing.T) {
	t.Parallel()

	t.Run("strong password passes with no feedback", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("StrongPass123!@#")
		assert.True(t, s.Valid)
		assert.Empty(t, s.Feedback)
		assert.GreaterOrEqual(t, s.Score, password.MinValidScore)
	})

	t.Run("short password collects length feedback", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("Ab1!")
		assert.False(t, s.Valid)
		assert.Contains(t, s.Feedback, "password must be at least 8 characters long")
	})

	t.Run("missing character classes itemized", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("alllowercase")
		assert.False(t, s.Valid)
		assert.Contains(t, s.Feedback, "password must contain at least one uppercase letter")
		assert.Contains(t, s.Feedback, "password must contain at least one digit")
		assert.Contains(t, s.Feedback, "password must contain at least one special character")
	})

	t.Run("leading dictionary word penalized", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("Password123!")
		assert.False(t, s.Valid)
		assert.Contains(t, s.Feedback, "password starts with a common word")
	})

	t.Run("repeated characters penalized", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("Goood1!xyz")
		assert.False(t, s.Valid)
		assert.Contains(t, s.Feedback, "password contains repeated characters")
	})

	t.Run("all digits rejected", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("1234567890")
		assert.False(t, s.Valid)
		assert.Contains(t, s.Feedback, "password cannot be all digits")
	})

	t.Run("longer passwords score higher", func(t *testing.T) {
		t.Parallel()

		short := password.ValidateStrength("Xk9!mQ2z")
		long := password.ValidateStrength("Xk9!mQ2zWf4$pL7e")
		assert.Greater(t, long.Score, short.Score)
	})

	t.Run("score never negative", func(t *testing.T) {
		t.Parallel()

		s := password.ValidateStrength("aaa")
		assert.GreaterOrEqual(t, s.Score, 0)
	})
}
