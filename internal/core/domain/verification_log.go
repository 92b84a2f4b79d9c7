package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VerificationStatus - verification attempt status
type VerificationStatus string

// Verification log statuses
const (
	VerificationStatusInitiated        VerificationStatus = "initiated"
	VerificationStatusSuccess          VerificationStatus = "success"
	VerificationStatusFailed           VerificationStatus = "failed"
	VerificationStatusExpired          VerificationStatus = "expired"
	VerificationStatusErrorMissingUUID VerificationStatus = "error_missing_uuid"
)

// VerificationLog is one verification attempt, single or batch-member.
// VerifiedPersonID is non nil iff the status is success.
type VerificationLog struct {
	ID                uuid.UUID
	TransactionID     string
	Status            VerificationStatus
	ExpiresAt         time.Time
	VerifiedPersonID  *uuid.UUID
	ReturnedData      json.RawMessage
	ResultDescription *string
	BatchSessionID    *uuid.UUID
	CreatedAt         time.Time
}

// NewVerificationLog - Constructor. batchSessionID is nil for single mode.
func NewVerificationLog(transactionID string, expiresAt time.Time, batchSessionID *uuid.UUID) *VerificationLog {
	return &VerificationLog{
		ID:             uuid.New(),
		TransactionID:  transactionID,
		Status:         VerificationStatusInitiated,
		ExpiresAt:      expiresAt,
		BatchSessionID: batchSessionID,
		CreatedAt:      time.Now().UTC(),
	}
}

// IsTerminal tells whether the stored status admits no further transition.
func (l *VerificationLog) IsTerminal() bool {
	return l.Status != VerificationStatusInitiated
}

// ExpiredByClock tells whether the attempt window has lapsed at the given instant.
func (l *VerificationLog) ExpiredByClock(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
