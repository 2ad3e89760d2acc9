package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/pkg/session"
)

const (
	sessionKeyPrefix  = "session:"
	userIndexPrefix   = "user_sessions:"
	userIndexScanGlob = userIndexPrefix + "*"
)

// SessionStore keeps sessions in Redis. Each session lives under its token
// with a server-side expiry; a per-user set indexes tokens for bulk
// invalidation.
type SessionStore struct {
	client *redis.Client
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client) *SessionStore {
	if client == nil {
		panic("redis: client is required")
	}
	return &SessionStore{client: client}
}

func sessionKey(token string) string       { return sessionKeyPrefix + token }
func userIndexKey(userID uuid.UUID) string { return userIndexPrefix + userID.String() }

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis: marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.Token), data, time.Until(sess.ExpiresAt))
	pipe.SAdd(ctx, userIndexKey(sess.UserID), sess.Token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis: get session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("redis: unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	sess.LastActivityAt = at
	return s.rewrite(ctx, sess)
}

func (s *SessionStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	sess.ExpiresAt = expiresAt
	sess.LastActivityAt = time.Now()
	return s.rewrite(ctx, sess)
}

// rewrite replaces the stored session, resetting the key expiry to match.
func (s *SessionStore) rewrite(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis: marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.Token), data, time.Until(sess.ExpiresAt)).Err(); err != nil {
		return fmt.Errorf("redis: rewrite session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, userIndexKey(sess.UserID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.deleteUserSessions(ctx, userID, "")
}

func (s *SessionStore) DeleteByUserIDExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error) {
	// The index holds tokens, so the kept session's token has to be resolved
	// from its ID by inspecting each candidate.
	tokens, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: list user sessions: %w", err)
	}

	keepToken := ""
	for _, token := range tokens {
		sess, err := s.Get(ctx, token)
		if err != nil {
			continue
		}
		if sess.ID == keepID {
			keepToken = token
			break
		}
	}

	return s.deleteUserSessions(ctx, userID, keepToken)
}

func (s *SessionStore) deleteUserSessions(ctx context.Context, userID uuid.UUID, keepToken string) (int64, error) {
	indexKey := userIndexKey(userID)
	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: list user sessions: %w", err)
	}

	var deleted int64
	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		if token == keepToken {
			continue
		}
		pipe.Del(ctx, sessionKey(token))
		pipe.SRem(ctx, indexKey, token)
		deleted++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis: delete user sessions: %w", err)
	}
	return deleted, nil
}

// DeleteExpired prunes index entries whose session keys Redis has already
// expired. Session data itself never outlives its TTL.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	var pruned int64

	iter := s.client.Scan(ctx, 0, userIndexScanGlob, 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		tokens, err := s.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			continue
		}
		for _, token := range tokens {
			exists, err := s.client.Exists(ctx, sessionKey(token)).Result()
			if err != nil {
				continue
			}
			if exists == 0 {
				if s.client.SRem(ctx, indexKey, token).Val() > 0 {
					pruned++
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return pruned, fmt.Errorf("redis: scan session indexes: %w", err)
	}
	return pruned, nil
}
