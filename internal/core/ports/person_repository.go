package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// PersonRepository the interface that defines the available methods
type PersonRepository interface {
	GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.Person, error)
	GetByNationalID(ctx context.Context, conn db.Querier, nationalID string) (*domain.Person, error)
}
