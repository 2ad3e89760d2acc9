package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Storage errors returned by UserStore and ResetTokenStore implementations.
var (
	ErrStorageUserNotFound   = errors.New("auth: user not found in storage")
	ErrStorageEmailExists    = errors.New("auth: email already exists")
	ErrStorageIdentityExists = errors.New("auth: external identity already exists")
	ErrStorageTokenNotFound  = errors.New("auth: reset token not found")
)

// UserStore persists user accounts. GetByEmail and GetByExternalID must not
// return soft-deleted users.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByExternalID(ctx context.Context, provider Provider, externalID string) (*User, error)
	Update(ctx context.Context, user *User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// ResetTokenStore persists password reset tokens keyed by their SHA-256 hash.
type ResetTokenStore interface {
	Create(ctx context.Context, token *ResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*ResetToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
