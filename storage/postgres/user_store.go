package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// Constraint names from the users table migration.
const (
	emailUniqueConstraint    = "users_email_unique"
	identityUniqueConstraint = "users_external_identity_unique"
)

func mapUniqueViolation(pgErr *pgconn.PgError) error {
	if pgErr.ConstraintName == identityUniqueConstraint {
		return auth.ErrStorageIdentityExists
	}
	return auth.ErrStorageEmailExists
}

// UserStore persists users in PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ auth.UserStore = (*UserStore)(nil)

// NewUserStore creates a PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	if pool == nil {
		panic("postgres: pool is required")
	}
	return &UserStore{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, display_name,
	avatar_url, auth_provider, external_id, is_active, is_email_verified,
	last_login_at, password_changed_at, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	var provider string
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.DisplayName,
		&u.AvatarURL, &provider, &u.ExternalID, &u.IsActive, &u.IsEmailVerified,
		&u.LastLoginAt, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrStorageUserNotFound
		}
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}
	u.AuthProvider = auth.Provider(provider)
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.DisplayName,
		user.AvatarURL, string(user.AuthProvider), user.ExternalID, user.IsActive, user.IsEmailVerified,
		user.LastLoginAt, user.PasswordChangedAt, user.CreatedAt, user.UpdatedAt, user.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return mapUniqueViolation(pgErr)
		}
		return fmt.Errorf("postgres: insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email)
	return scanUser(row)
}

func (s *UserStore) GetByExternalID(ctx context.Context, provider auth.Provider, externalID string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE auth_provider = $1 AND external_id = $2 AND deleted_at IS NULL`,
		string(provider), externalID)
	return scanUser(row)
}

func (s *UserStore) Update(ctx context.Context, user *auth.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET
			email = $2, password_hash = $3, first_name = $4, last_name = $5,
			display_name = $6, avatar_url = $7, auth_provider = $8, external_id = $9,
			is_active = $10, is_email_verified = $11, last_login_at = $12,
			password_changed_at = $13, updated_at = $14
		WHERE id = $1 AND deleted_at IS NULL`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.DisplayName, user.AvatarURL, string(user.AuthProvider), user.ExternalID,
		user.IsActive, user.IsEmailVerified, user.LastLoginAt,
		user.PasswordChangedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return mapUniqueViolation(pgErr)
		}
		return fmt.Errorf("postgres: update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrStorageUserNotFound
	}
	return nil
}

func (s *UserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: soft delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrStorageUserNotFound
	}
	return nil
}

func (s *UserStore) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: hard delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrStorageUserNotFound
	}
	return nil
}
