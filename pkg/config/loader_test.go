package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/config"
)

// Each test uses its own config type: the loader caches per type, so sharing
// a type across tests would leak state between them.

func TestLoad(t *testing.T) {
	t.Run("parses env with defaults", func(t *testing.T) {
		type loadDefaults struct {
			Name    string        `env:"LOAD_TEST_NAME" envDefault:"fallback"`
			Timeout time.Duration `env:"LOAD_TEST_TIMEOUT" envDefault:"30s"`
		}

		var cfg loadDefaults
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("reads set variables", func(t *testing.T) {
		type loadSet struct {
			Port int `env:"LOAD_TEST_PORT" envDefault:"8080"`
		}

		t.Setenv("LOAD_TEST_PORT", "9090")

		var cfg loadSet
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 9090, cfg.Port)
	})

	t.Run("caches per type", func(t *testing.T) {
		type loadCached struct {
			Value string `env:"LOAD_TEST_CACHED" envDefault:"first"`
		}

		var first loadCached
		require.NoError(t, config.Load(&first))

		// A later env change must not affect the cached value.
		t.Setenv("LOAD_TEST_CACHED", "second")

		var second loadCached
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first.Value, second.Value)
	})

	t.Run("nil pointer", func(t *testing.T) {
		type loadNil struct{}

		var cfg *loadNil
		require.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("missing required variable", func(t *testing.T) {
		type loadRequired struct {
			Secret string `env:"LOAD_TEST_REQUIRED_SECRET,required"`
		}

		var cfg loadRequired
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		type mustLoadRequired struct {
			Secret string `env:"MUST_LOAD_TEST_SECRET,required"`
		}

		assert.Panics(t, func() {
			var cfg mustLoadRequired
			config.MustLoad(&cfg)
		})
	})
}
