package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrIssuanceLogDoesNotExist issuance log does not exist
var ErrIssuanceLogDoesNotExist = errors.New("issuance log does not exist")

type issuanceLog struct{}

// NewIssuanceLog returns a new issuance log repository
func NewIssuanceLog() ports.IssuanceLogRepository {
	return &issuanceLog{}
}

func (r issuanceLog) Save(ctx context.Context, conn db.Querier, log *domain.IssuanceLog) error {
	_, err := conn.Exec(ctx, `
INSERT INTO issuance_logs (id, issued_vc_id, transaction_id, status, expires_at, claimed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.IssuedVcID, log.TransactionID, log.Status, log.ExpiresAt, log.ClaimedAt, log.CreatedAt)
	return err
}

func (r issuanceLog) GetByTransactionID(ctx context.Context, conn db.Querier, transactionID string) (*domain.IssuanceLog, error) {
	log := domain.IssuanceLog{}
	err := conn.QueryRow(ctx, `
SELECT id, issued_vc_id, transaction_id, status, expires_at, claimed_at, created_at
FROM issuance_logs
WHERE transaction_id = $1`, transactionID).
		Scan(&log.ID, &log.IssuedVcID, &log.TransactionID, &log.Status, &log.ExpiresAt, &log.ClaimedAt, &log.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrIssuanceLogDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// MarkUserClaimed is guarded on the stored status still being initiated so a
// duplicate concurrent poll degrades to a no-op.
func (r issuanceLog) MarkUserClaimed(ctx context.Context, conn db.Querier, id uuid.UUID, claimedAt time.Time) (bool, error) {
	tag, err := conn.Exec(ctx, `
UPDATE issuance_logs SET status = $2, claimed_at = $3
WHERE id = $1 AND status = $4`,
		id, domain.IssuanceLogStatusUserClaimed, claimedAt, domain.IssuanceLogStatusInitiated)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r issuanceLog) MarkExpired(ctx context.Context, conn db.Querier, id uuid.UUID) (bool, error) {
	tag, err := conn.Exec(ctx, `
UPDATE issuance_logs SET status = $2
WHERE id = $1 AND status = $3`,
		id, domain.IssuanceLogStatusExpired, domain.IssuanceLogStatusInitiated)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
