package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// IssuanceLogRepository the interface that defines the available methods.
// Terminal transitions are conditional on the stored status still being
// initiated and report whether the row actually changed, so that duplicate
// concurrent polls degrade to no-ops.
type IssuanceLogRepository interface {
	Save(ctx context.Context, conn db.Querier, log *domain.IssuanceLog) error
	GetByTransactionID(ctx context.Context, conn db.Querier, transactionID string) (*domain.IssuanceLog, error)
	MarkUserClaimed(ctx context.Context, conn db.Querier, id uuid.UUID, claimedAt time.Time) (bool, error)
	MarkExpired(ctx context.Context, conn db.Querier, id uuid.UUID) (bool, error)
}
