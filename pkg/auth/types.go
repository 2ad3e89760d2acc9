package auth

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies which identity system owns a user account.
type Provider string

const (
	ProviderLocal      Provider = "local"
	ProviderClerk      Provider = "clerk"
	ProviderCloudflare Provider = "cloudflare"
	ProviderCognito    Provider = "cognito"
)

// Valid reports whether p is a known provider value.
func (p Provider) Valid() bool {
	switch p {
	case ProviderLocal, ProviderClerk, ProviderCloudflare, ProviderCognito:
		return true
	}
	return false
}

// User is an account record. PasswordHash is empty for users owned by an
// external provider.
type User struct {
	ID              uuid.UUID
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	DisplayName     string
	AvatarURL       string
	AuthProvider    Provider
	ExternalID      string
	IsActive        bool
	IsEmailVerified bool

	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// FullName returns the display name if set, otherwise first and last name
// joined with a space.
func (u *User) FullName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// IsDeleted reports whether the account was soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// ResetToken is a single-use password reset token. Only the SHA-256 hash of
// the raw token is stored.
type ResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token is past its expiry.
func (t *ResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
