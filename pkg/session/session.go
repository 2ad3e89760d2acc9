package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is an ephemeral authentication grant tied to a single user.
// A session is valid iff it exists in the store and is unexpired; whether the
// owning user may still authenticate is enforced a layer up, in the auth
// service.
type Session struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Token          string    `json:"token"`
	IP             string    `json:"ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	Fingerprint    string    `json:"fingerprint,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// ClientInfo carries request-derived client characteristics recorded on the
// session for audit and hijack detection.
type ClientInfo struct {
	IP          string
	UserAgent   string
	Fingerprint string
}

// NewSession creates a session for the given user with the provided TTL.
func NewSession(userID uuid.UUID, token string, client *ClientInfo, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:             uuid.New(),
		UserID:         userID,
		Token:          token,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
	if client != nil {
		s.IP = client.IP
		s.UserAgent = client.UserAgent
		s.Fingerprint = client.Fingerprint
	}
	return s
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
