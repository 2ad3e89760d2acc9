package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/pkg/session"
)

// SessionStore persists sessions in PostgreSQL.
type SessionStore struct {
	pool *pgxpool.Pool
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a PostgreSQL-backed session store.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	if pool == nil {
		panic("postgres: pool is required")
	}
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, ip, user_agent, fingerprint,
			expires_at, last_activity_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.UserID, sess.Token, sess.IP, sess.UserAgent, sess.Fingerprint,
		sess.ExpiresAt, sess.LastActivityAt, sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	var sess session.Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token, ip, user_agent, fingerprint,
			expires_at, last_activity_at, created_at
		FROM sessions WHERE token = $1`, token).
		Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.IP, &sess.UserAgent, &sess.Fingerprint,
			&sess.ExpiresAt, &sess.LastActivityAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("postgres: get session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_activity_at = $2 WHERE token = $1`, token, at)
	if err != nil {
		return fmt.Errorf("postgres: touch session: %w", err)
	}
	return nil
}

func (s *SessionStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET expires_at = $2, last_activity_at = now()
		WHERE token = $1`, token, expiresAt)
	if err != nil {
		return fmt.Errorf("postgres: extend session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("postgres: delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete sessions by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore) DeleteByUserIDExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND id <> $2`, userID, keepID)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete sessions by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
