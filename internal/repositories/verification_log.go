package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrVerificationLogDoesNotExist verification log does not exist
var ErrVerificationLogDoesNotExist = errors.New("verification log does not exist")

const verificationLogFields = `id, transaction_id, status, expires_at, verified_person_id, returned_data,
       result_description, batch_session_id, created_at`

type verificationLog struct{}

// NewVerificationLog returns a new verification log repository
func NewVerificationLog() ports.VerificationLogRepository {
	return &verificationLog{}
}

func (r verificationLog) Save(ctx context.Context, conn db.Querier, log *domain.VerificationLog) error {
	returnedData := pgtype.JSONB{Status: pgtype.Null}
	if log.ReturnedData != nil {
		if err := returnedData.Set(log.ReturnedData); err != nil {
			return err
		}
	}
	_, err := conn.Exec(ctx, `
INSERT INTO verification_logs (id, transaction_id, status, expires_at, verified_person_id, returned_data, result_description, batch_session_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.ID, log.TransactionID, log.Status, log.ExpiresAt, log.VerifiedPersonID, returnedData, log.ResultDescription, log.BatchSessionID, log.CreatedAt)
	return err
}

func (r verificationLog) GetByTransactionID(ctx context.Context, conn db.Querier, transactionID string) (*domain.VerificationLog, error) {
	row := conn.QueryRow(ctx, `
SELECT `+verificationLogFields+`
FROM verification_logs
WHERE transaction_id = $1`, transactionID)
	return scanVerificationLog(row)
}

func (r verificationLog) GetPendingBySession(ctx context.Context, conn db.Querier, sessionID uuid.UUID) ([]*domain.VerificationLog, error) {
	return r.getBySession(ctx, conn, sessionID, true)
}

func (r verificationLog) GetAllBySession(ctx context.Context, conn db.Querier, sessionID uuid.UUID) ([]*domain.VerificationLog, error) {
	return r.getBySession(ctx, conn, sessionID, false)
}

func (r verificationLog) getBySession(ctx context.Context, conn db.Querier, sessionID uuid.UUID, pendingOnly bool) ([]*domain.VerificationLog, error) {
	query := `
SELECT ` + verificationLogFields + `
FROM verification_logs
WHERE batch_session_id = $1`
	args := []interface{}{sessionID}
	if pendingOnly {
		query += ` AND status = $2`
		args = append(args, domain.VerificationStatusInitiated)
	}
	query += ` ORDER BY created_at`

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.VerificationLog, 0)
	for rows.Next() {
		log, err := scanVerificationLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// SetTerminal is guarded on the stored status still being initiated so two
// pollers racing on the same transaction write the terminal row once.
func (r verificationLog) SetTerminal(ctx context.Context, conn db.Querier, log *domain.VerificationLog) (bool, error) {
	returnedData := pgtype.JSONB{Status: pgtype.Null}
	if log.ReturnedData != nil {
		if err := returnedData.Set(log.ReturnedData); err != nil {
			return false, err
		}
	}
	tag, err := conn.Exec(ctx, `
UPDATE verification_logs
SET status = $2, verified_person_id = $3, returned_data = $4, result_description = $5
WHERE id = $1 AND status = $6`,
		log.ID, log.Status, log.VerifiedPersonID, returnedData, log.ResultDescription, domain.VerificationStatusInitiated)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanVerificationLog(row pgx.Row) (*domain.VerificationLog, error) {
	log := domain.VerificationLog{}
	var returnedData pgtype.JSONB
	err := row.Scan(
		&log.ID,
		&log.TransactionID,
		&log.Status,
		&log.ExpiresAt,
		&log.VerifiedPersonID,
		&returnedData,
		&log.ResultDescription,
		&log.BatchSessionID,
		&log.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrVerificationLogDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	if returnedData.Status == pgtype.Present {
		log.ReturnedData = append(log.ReturnedData, returnedData.Bytes...)
	}
	return &log, nil
}
