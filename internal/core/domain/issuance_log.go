package domain

import (
	"time"

	"github.com/google/uuid"
)

// IssuanceLogStatus - issuance transaction status
type IssuanceLogStatus string

// Issuance log statuses
const (
	IssuanceLogStatusInitiated   IssuanceLogStatus = "initiated"
	IssuanceLogStatusUserClaimed IssuanceLogStatus = "user_claimed"
	IssuanceLogStatusExpired     IssuanceLogStatus = "expired"
)

// IssuanceLog is the audit record of one issuance transaction, 1:1 with an
// IssuedVC. Append-only: terminal transitions are written once.
type IssuanceLog struct {
	ID            uuid.UUID
	IssuedVcID    uuid.UUID
	TransactionID string
	Status        IssuanceLogStatus
	ExpiresAt     time.Time
	ClaimedAt     *time.Time
	CreatedAt     time.Time
}

// NewIssuanceLog - Constructor
func NewIssuanceLog(issuedVcID uuid.UUID, transactionID string, expiresAt time.Time) *IssuanceLog {
	return &IssuanceLog{
		ID:            uuid.New(),
		IssuedVcID:    issuedVcID,
		TransactionID: transactionID,
		Status:        IssuanceLogStatusInitiated,
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsTerminal tells whether the stored status admits no further transition.
func (l *IssuanceLog) IsTerminal() bool {
	return l.Status == IssuanceLogStatusUserClaimed || l.Status == IssuanceLogStatusExpired
}

// ExpiredByClock tells whether the claim window has lapsed at the given instant.
func (l *IssuanceLog) ExpiredByClock(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// DisplayStatus derives the status reported to audit views. Expiry is lazy:
// it is only materialized to storage when polled, but a log with no claim
// timestamp and a lapsed window must always be reported as expired, whatever
// the stored enum still says.
func (l *IssuanceLog) DisplayStatus(now time.Time) IssuanceLogStatus {
	if l.Status == IssuanceLogStatusInitiated && l.ClaimedAt == nil && l.ExpiredByClock(now) {
		return IssuanceLogStatusExpired
	}
	return l.Status
}
