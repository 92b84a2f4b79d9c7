package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
)

// EligibleTemplate is a template the person holds an eligibility for,
// annotated with whether a credential was already claimed against it.
type EligibleTemplate struct {
	Template domain.VCTemplate
	Claimed  bool
}

// StartIssuanceResponse - is the result of starting an issuance attempt.
type StartIssuanceResponse struct {
	IssuedVcID    uuid.UUID
	TransactionID string
	QRCode        string
	DeepLink      string
	BenefitLevel  string
	ExpiresAt     time.Time
}

// IssuanceStatus - is the result of polling an issuance transaction.
type IssuanceStatus struct {
	TransactionID string
	Status        domain.IssuanceLogStatus
	CID           *string
	ExpiresAt     time.Time
}

// BenefitPicker picks a benefit level out of a template's candidate set. The
// random pick is a simulation stand-in, so it stays behind an interface that
// tests can pin.
type BenefitPicker interface {
	Pick(levels []string) (string, error)
}

// IssuanceService - the interface that defines the available methods
type IssuanceService interface {
	Eligibilities(ctx context.Context, personID uuid.UUID) ([]EligibleTemplate, error)
	Start(ctx context.Context, personID, templateID uuid.UUID) (*StartIssuanceResponse, error)
	Status(ctx context.Context, transactionID string) (*IssuanceStatus, error)
}
