package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle against an injected Store. The store is
// always explicit; there is no process-global fallback, so tests and callers
// choose persistence deliberately.
type Manager struct {
	store        Store
	config       Config
	activityChan chan activityUpdate
	done         chan struct{}
}

type activityUpdate struct {
	token string
	time  time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig overrides the default session configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.TTL > 0 {
			m.config = cfg
		}
	}
}

// NewManager creates a session manager backed by the given store.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		panic("session: store is required")
	}

	m := &Manager{
		store:        store,
		config:       DefaultConfig(),
		activityChan: make(chan activityUpdate, 1000),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	// Background worker applies activity updates off the hot path.
	go m.activityWorker()

	return m
}

// Create issues a new session for the user. Multiple concurrent sessions per
// user are allowed and independent; this is how multi-device support works.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, client *ClientInfo) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := NewSession(userID, token, client, m.config.TTL)
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate resolves a token to its session. Expired sessions are deleted as a
// side effect and reported as ErrSessionExpired. On success the session's
// last activity is queued for update.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if m.shouldUpdateActivity(session) {
		m.queueActivityUpdate(session.Token)
	}

	return session, nil
}

// Refresh extends the session expiry by a full TTL from now. Expired
// sessions are deleted and not refreshed.
func (m *Manager) Refresh(ctx context.Context, token string) (*Session, error) {
	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	now := time.Now()
	session.ExpiresAt = now.Add(m.config.TTL)
	session.LastActivityAt = now

	if err := m.store.Extend(ctx, token, session.ExpiresAt); err != nil {
		return nil, err
	}

	return session, nil
}

// Destroy removes a single session. Destroying an unknown token is not an
// error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// DestroyAll removes every session owned by the user, returning the count.
func (m *Manager) DestroyAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.store.DeleteByUserID(ctx, userID)
}

// DestroyAllExcept removes every session owned by the user except keepID,
// returning the count. Used for "sign out other devices".
func (m *Manager) DestroyAllExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error) {
	return m.store.DeleteByUserIDExcept(ctx, userID, keepID)
}

// SweepExpired deletes all sessions whose expiry has passed. Intended to run
// on a periodic external trigger (cron, scheduler).
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

func (m *Manager) shouldUpdateActivity(session *Session) bool {
	return time.Since(session.LastActivityAt) >= m.config.ActivityUpdateThreshold
}

func (m *Manager) queueActivityUpdate(token string) {
	select {
	case m.activityChan <- activityUpdate{token: token, time: time.Now()}:
	default:
		// Channel full, drop the update rather than block validation.
	}
}

func (m *Manager) activityWorker() {
	for {
		select {
		case update := <-m.activityChan:
			_ = m.store.Touch(context.Background(), update.token, update.time)
		case <-m.done:
			// Drain remaining updates for graceful shutdown.
			for {
				select {
				case update := <-m.activityChan:
					_ = m.store.Touch(context.Background(), update.token, update.time)
				default:
					return
				}
			}
		}
	}
}

// Close gracefully shuts down the activity worker.
func (m *Manager) Close() error {
	select {
	case <-m.done:
		return nil
	default:
		close(m.done)
		return nil
	}
}

// generateToken creates a 256-bit cryptographically random token, hex
// encoded to 64 characters.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return hex.EncodeToString(b), nil
}
