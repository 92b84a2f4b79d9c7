package domain

import (
	"time"

	"github.com/google/uuid"
)

// BenefitLevelNA is assigned when a template defines no benefit levels.
const BenefitLevelNA = "NA"

// VCTemplate is a credential type definition. Static reference data.
type VCTemplate struct {
	ID            uuid.UUID
	Name          string
	VCUID         string
	CardArtURL    string
	BenefitLevels []string
	CreatedAt     time.Time
}

// PersonEligibility grants a person the right to claim a template. One row
// per (person, template) pair, deleted on revocation.
type PersonEligibility struct {
	ID         uuid.UUID
	PersonID   uuid.UUID
	TemplateID uuid.UUID
	CreatedAt  time.Time
}
