package ports

import (
	"context"

	"github.com/google/uuid"
)

// RevocationService - the interface that defines the available methods
type RevocationService interface {
	// Revoke revokes every live external credential for (person, template),
	// then atomically marks all local issued rows revoked and removes the
	// eligibility. If any external revocation fails, no local state changes.
	Revoke(ctx context.Context, personID, templateID uuid.UUID) error
}
