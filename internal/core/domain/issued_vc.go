package domain

import (
	"time"

	"github.com/google/uuid"
)

// IssuedVCStatus - issued VC lifecycle status
type IssuedVCStatus string

// Issued VC statuses
const (
	IssuedVCStatusIssuing IssuedVCStatus = "issuing" // created locally, waiting for the wallet claim
	IssuedVCStatusIssued  IssuedVCStatus = "issued"  // claimed in the wallet, cid known
	IssuedVCStatusExpired IssuedVCStatus = "expired" // claim window lapsed unclaimed
	IssuedVCStatusRevoked IssuedVCStatus = "revoked" // revoked by admin action
)

// IssuedVC is one issuance attempt for a (person, template) pair. The cid is
// only populated once the wallet confirms the claim.
type IssuedVC struct {
	ID           uuid.UUID
	PersonID     uuid.UUID
	TemplateID   uuid.UUID
	Status       IssuedVCStatus
	CID          *string
	BenefitLevel string
	IssuedAt     *time.Time
	CreatedAt    time.Time
}

// NewIssuedVC - Constructor. A new attempt always starts in issuing.
func NewIssuedVC(personID, templateID uuid.UUID, benefitLevel string) *IssuedVC {
	return &IssuedVC{
		ID:           uuid.New(),
		PersonID:     personID,
		TemplateID:   templateID,
		Status:       IssuedVCStatusIssuing,
		BenefitLevel: benefitLevel,
		CreatedAt:    time.Now().UTC(),
	}
}

// VerifiedCredential is the per-credential block of the verification success
// payload: an issued credential joined with its template display data.
type VerifiedCredential struct {
	TemplateName string  `json:"templateName"`
	BenefitLevel string  `json:"benefitLevel"`
	CardArtURL   string  `json:"cardArtUrl"`
	CID          *string `json:"cid,omitempty"`
}
