package session

import "time"

// Config holds session lifetime settings.
type Config struct {
	// TTL is the session lifetime from creation or refresh. 720h = 30 days.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// ActivityUpdateThreshold limits how often last-activity writes hit the
	// store on hot paths.
	ActivityUpdateThreshold time.Duration `env:"SESSION_ACTIVITY_THRESHOLD" envDefault:"1m"`

	// CleanupInterval is the sweep period for the in-memory store. Zero
	// disables the background sweeper.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
}

// DefaultConfig returns production defaults: 30-day sessions with
// minute-grained activity tracking.
func DefaultConfig() Config {
	return Config{
		TTL:                     30 * 24 * time.Hour,
		ActivityUpdateThreshold: time.Minute,
		CleanupInterval:         10 * time.Minute,
	}
}
