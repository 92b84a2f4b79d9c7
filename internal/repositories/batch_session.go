package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrBatchSessionDoesNotExist batch session does not exist
var ErrBatchSessionDoesNotExist = errors.New("batch verification session does not exist")

type batchSession struct{}

// NewBatchSession returns a new batch verification session repository
func NewBatchSession() ports.BatchSessionRepository {
	return &batchSession{}
}

func (r batchSession) Save(ctx context.Context, conn db.Querier, session *domain.BatchVerificationSession) error {
	_, err := conn.Exec(ctx, `
INSERT INTO batch_verification_sessions (id, uuid, status, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UUID, session.Status, session.ExpiresAt, session.CreatedAt)
	return err
}

func (r batchSession) GetByUUID(ctx context.Context, conn db.Querier, sessionUUID string) (*domain.BatchVerificationSession, error) {
	session := domain.BatchVerificationSession{}
	err := conn.QueryRow(ctx, `
SELECT id, uuid, status, expires_at, created_at
FROM batch_verification_sessions
WHERE uuid = $1`, sessionUUID).
		Scan(&session.ID, &session.UUID, &session.Status, &session.ExpiresAt, &session.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrBatchSessionDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r batchSession) MarkExpired(ctx context.Context, conn db.Querier, id uuid.UUID) (bool, error) {
	tag, err := conn.Exec(ctx, `
UPDATE batch_verification_sessions SET status = $2
WHERE id = $1 AND status = $3`,
		id, domain.BatchSessionStatusExpired, domain.BatchSessionStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
