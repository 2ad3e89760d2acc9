package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/pkg/audit"
)

// AuditStorage persists audit events in PostgreSQL.
type AuditStorage struct {
	pool *pgxpool.Pool
}

var _ audit.Storage = (*AuditStorage)(nil)

// NewAuditStorage creates a PostgreSQL-backed audit trail.
func NewAuditStorage(pool *pgxpool.Pool) *AuditStorage {
	if pool == nil {
		panic("postgres: pool is required")
	}
	return &AuditStorage{pool: pool}
}

func (s *AuditStorage) Store(ctx context.Context, event audit.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, action, result, user_id, email, ip,
			user_agent, error, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Action, string(event.Result), event.UserID, event.Email,
		event.IP, event.UserAgent, event.Error, event.Metadata, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert audit event: %w", err)
	}
	return nil
}
