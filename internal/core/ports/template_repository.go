package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// TemplateRepository the interface that defines the available methods
type TemplateRepository interface {
	GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.VCTemplate, error)
}

// EligibilityRepository the interface that defines the available methods
type EligibilityRepository interface {
	GetByPersonID(ctx context.Context, conn db.Querier, personID uuid.UUID) ([]*domain.PersonEligibility, error)
	Exists(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) (bool, error)
	Delete(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) error
}
