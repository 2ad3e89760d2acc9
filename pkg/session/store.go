package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for session persistence. Implementations must
// be safe for concurrent use.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token. Expired sessions are still returned;
	// expiry handling belongs to the manager.
	Get(ctx context.Context, token string) (*Session, error)

	// Touch updates only the last activity time.
	Touch(ctx context.Context, token string, at time.Time) error

	// Extend moves the expiry forward and updates last activity.
	Extend(ctx context.Context, token string, expiresAt time.Time) error

	// Delete removes a session by token.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes all sessions for a user, returning the count.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteByUserIDExcept removes all of a user's sessions except the one
	// with the given session ID, returning the count.
	DeleteByUserIDExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error)

	// DeleteExpired removes all sessions whose expiry has passed,
	// returning the count.
	DeleteExpired(ctx context.Context) (int64, error)
}
