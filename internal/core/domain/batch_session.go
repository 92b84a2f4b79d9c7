package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchSessionStatus - batch verification session status
type BatchSessionStatus string

// Batch session statuses
const (
	BatchSessionStatusActive  BatchSessionStatus = "active"
	BatchSessionStatusClosed  BatchSessionStatus = "closed"
	BatchSessionStatusExpired BatchSessionStatus = "expired"
)

// BatchVerificationSession is a long-lived verification waiting room. Every
// scan of its QR spawns a new one-shot VerificationLog linked to it.
type BatchVerificationSession struct {
	ID        uuid.UUID
	UUID      string
	Status    BatchSessionStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewBatchVerificationSession - Constructor
func NewBatchVerificationSession(expiresAt time.Time) *BatchVerificationSession {
	return &BatchVerificationSession{
		ID:        uuid.New(),
		UUID:      uuid.NewString(),
		Status:    BatchSessionStatusActive,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

// ExpiredByClock tells whether the session deadline has lapsed at the given instant.
func (s *BatchVerificationSession) ExpiredByClock(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
