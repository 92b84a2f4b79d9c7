package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
)

// StartVerificationResponse - is the result of starting a single verification attempt.
type StartVerificationResponse struct {
	TransactionID string
	QRCodeImage   string
	AuthURI       string
	ExpiresAt     time.Time
}

// VerificationSuccessPayload is the rich payload assembled on verification
// success: the resolved person's non sensitive identity, contact and reviewer
// blocks, their currently issued credentials, and the raw sandbox payload.
// Orphaned is set when the person record was deleted after the success was
// recorded; callers get the raw payload but no identity blocks.
type VerificationSuccessPayload struct {
	PersonName          string                      `json:"personName,omitempty"`
	NationalID          string                      `json:"nationalId,omitempty"`
	EmergencyContact    *domain.EmergencyContact    `json:"emergencyContact,omitempty"`
	ReviewingAuthority  string                      `json:"reviewingAuthority,omitempty"`
	ReviewerName        string                      `json:"reviewerName,omitempty"`
	VerifiedCredentials []domain.VerifiedCredential `json:"verifiedCredentials,omitempty"`
	Raw                 json.RawMessage             `json:"raw,omitempty"`
	Orphaned            bool                        `json:"orphaned,omitempty"`
}

// VerificationOutcome - is the result of polling a verification transaction.
type VerificationOutcome struct {
	TransactionID string
	Status        domain.VerificationStatus
	Description   *string
	Payload       *VerificationSuccessPayload
	ExpiresAt     time.Time
}

// StartBatchResponse - is the result of opening a batch verification session.
type StartBatchResponse struct {
	SessionUUID string
	ScanURL     string
	ExpiresAt   time.Time
}

// BatchOutcome is the consolidated batch session summary: every log under the
// session, terminal ones carrying their resolved outcome, pending ones marked
// scanned but not yet complete.
type BatchOutcome struct {
	SessionUUID string
	Status      domain.BatchSessionStatus
	ExpiresAt   time.Time
	Results     []VerificationOutcome
}

// VerificationService - the interface that defines the available methods
type VerificationService interface {
	Start(ctx context.Context) (*StartVerificationResponse, error)
	Status(ctx context.Context, transactionID string) (*VerificationOutcome, error)
	StartBatch(ctx context.Context) (*StartBatchResponse, error)
	// Scan validates the batch session, mints a one-shot verification log and
	// returns the external deeplink the scanner must be redirected to.
	Scan(ctx context.Context, sessionUUID string) (string, error)
	BatchStatus(ctx context.Context, sessionUUID string) (*BatchOutcome, error)
}
