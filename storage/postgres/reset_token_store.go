package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// ResetTokenStore persists password reset tokens in PostgreSQL.
type ResetTokenStore struct {
	pool *pgxpool.Pool
}

var _ auth.ResetTokenStore = (*ResetTokenStore)(nil)

// NewResetTokenStore creates a PostgreSQL-backed reset token store.
func NewResetTokenStore(pool *pgxpool.Pool) *ResetTokenStore {
	if pool == nil {
		panic("postgres: pool is required")
	}
	return &ResetTokenStore{pool: pool}
}

func (s *ResetTokenStore) Create(ctx context.Context, token *auth.ResetToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert reset token: %w", err)
	}
	return nil
}

func (s *ResetTokenStore) GetByHash(ctx context.Context, tokenHash string) (*auth.ResetToken, error) {
	var t auth.ResetToken
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1`, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrStorageTokenNotFound
		}
		return nil, fmt.Errorf("postgres: get reset token: %w", err)
	}
	return &t, nil
}

func (s *ResetTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete reset token: %w", err)
	}
	return nil
}

func (s *ResetTokenStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("postgres: delete reset tokens by user: %w", err)
	}
	return nil
}

func (s *ResetTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
