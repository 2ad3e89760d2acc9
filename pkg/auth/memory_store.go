package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUserStore is an in-memory UserStore for development and tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

var _ UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]*User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.IsDeleted() {
			continue
		}
		if u.Email == user.Email {
			return ErrStorageEmailExists
		}
		if user.ExternalID != "" && u.AuthProvider == user.AuthProvider && u.ExternalID == user.ExternalID {
			return ErrStorageIdentityExists
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrStorageUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email && !u.IsDeleted() {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrStorageUserNotFound
}

func (s *MemoryUserStore) GetByExternalID(_ context.Context, provider Provider, externalID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.AuthProvider == provider && u.ExternalID == externalID && !u.IsDeleted() {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrStorageUserNotFound
}

func (s *MemoryUserStore) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok || existing.IsDeleted() {
		return ErrStorageUserNotFound
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryUserStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.IsDeleted() {
		return ErrStorageUserNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	u.UpdatedAt = now
	return nil
}

func (s *MemoryUserStore) HardDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrStorageUserNotFound
	}
	delete(s.users, id)
	return nil
}

// MemoryResetTokenStore is an in-memory ResetTokenStore for development and
// tests.
type MemoryResetTokenStore struct {
	mu     sync.RWMutex
	tokens map[uuid.UUID]*ResetToken
}

var _ ResetTokenStore = (*MemoryResetTokenStore)(nil)

// NewMemoryResetTokenStore creates an empty in-memory reset token store.
func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{tokens: make(map[uuid.UUID]*ResetToken)}
}

func (s *MemoryResetTokenStore) Create(_ context.Context, token *ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *token
	s.tokens[token.ID] = &clone
	return nil
}

func (s *MemoryResetTokenStore) GetByHash(_ context.Context, tokenHash string) (*ResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			clone := *t
			return &clone, nil
		}
	}
	return nil, ErrStorageTokenNotFound
}

func (s *MemoryResetTokenStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, id)
	return nil
}

func (s *MemoryResetTokenStore) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *MemoryResetTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	now := time.Now()
	for id, t := range s.tokens {
		if now.After(t.ExpiresAt) {
			delete(s.tokens, id)
			count++
		}
	}
	return count, nil
}
