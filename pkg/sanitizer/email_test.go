package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authkit/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Alice@Example.com", "alice@example.com"},
		{"trims whitespace", "  bob@example.com  ", "bob@example.com"},
		{"collapses dots in local part", "a..b@example.com", "a.b@example.com"},
		{"strips leading and trailing dots", ".carol.@example.com", "carol@example.com"},
		{"keeps plus tags", "Test.User+Tag@EXAMPLE.COM", "test.user+tag@example.com"},
		{"returns invalid shape as-is", "not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestExtractEmailDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", sanitizer.ExtractEmailDomain("alice@Example.com"))
	assert.Equal(t, "", sanitizer.ExtractEmailDomain("alice@"))
	assert.Equal(t, "", sanitizer.ExtractEmailDomain("no-at-sign"))
}
