package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// VerificationLogRepository the interface that defines the available methods
type VerificationLogRepository interface {
	Save(ctx context.Context, conn db.Querier, log *domain.VerificationLog) error
	GetByTransactionID(ctx context.Context, conn db.Querier, transactionID string) (*domain.VerificationLog, error)
	GetPendingBySession(ctx context.Context, conn db.Querier, sessionID uuid.UUID) ([]*domain.VerificationLog, error)
	GetAllBySession(ctx context.Context, conn db.Querier, sessionID uuid.UUID) ([]*domain.VerificationLog, error)
	// SetTerminal persists the terminal fields of the log (status, verified
	// person, returned data, description) guarded on the stored status still
	// being initiated. Returns whether the row changed.
	SetTerminal(ctx context.Context, conn db.Querier, log *domain.VerificationLog) (bool, error)
}

// BatchSessionRepository the interface that defines the available methods
type BatchSessionRepository interface {
	Save(ctx context.Context, conn db.Querier, session *domain.BatchVerificationSession) error
	GetByUUID(ctx context.Context, conn db.Querier, sessionUUID string) (*domain.BatchVerificationSession, error)
	MarkExpired(ctx context.Context, conn db.Querier, id uuid.UUID) (bool, error)
}
