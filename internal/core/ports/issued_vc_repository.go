package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// IssuedVCRepository the interface that defines the available methods
type IssuedVCRepository interface {
	Save(ctx context.Context, conn db.Querier, vc *domain.IssuedVC) error
	GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.IssuedVC, error)
	// GetLiveByPair returns the issued rows for (person, template) that carry a
	// live external credential: status issued and cid not null.
	GetLiveByPair(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) ([]*domain.IssuedVC, error)
	// MarkRevokedByPair flips every row for (person, template) to revoked,
	// whatever its previous status, and returns how many rows changed.
	MarkRevokedByPair(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) (int64, error)
	SetClaimed(ctx context.Context, conn db.Querier, id uuid.UUID, cid string, issuedAt time.Time) error
	SetExpired(ctx context.Context, conn db.Querier, id uuid.UUID) error
	HasIssued(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) (bool, error)
	// GetVerifiedCredentials returns the person's currently issued credentials
	// joined with their template display data.
	GetVerifiedCredentials(ctx context.Context, conn db.Querier, personID uuid.UUID) ([]domain.VerifiedCredential, error)
}
