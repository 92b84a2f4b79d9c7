package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrEligibilityDoesNotExist eligibility does not exist
var ErrEligibilityDoesNotExist = errors.New("person eligibility does not exist")

type eligibility struct{}

// NewEligibility returns a new person eligibility repository
func NewEligibility() ports.EligibilityRepository {
	return &eligibility{}
}

func (e eligibility) GetByPersonID(ctx context.Context, conn db.Querier, personID uuid.UUID) ([]*domain.PersonEligibility, error) {
	rows, err := conn.Query(ctx, `
SELECT id, person_id, template_id, created_at
FROM person_eligibilities
WHERE person_id = $1
ORDER BY created_at`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eligibilities := make([]*domain.PersonEligibility, 0)
	for rows.Next() {
		pe := domain.PersonEligibility{}
		if err := rows.Scan(&pe.ID, &pe.PersonID, &pe.TemplateID, &pe.CreatedAt); err != nil {
			return nil, err
		}
		eligibilities = append(eligibilities, &pe)
	}
	return eligibilities, rows.Err()
}

func (e eligibility) Exists(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) (bool, error) {
	var found bool
	err := conn.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM person_eligibilities WHERE person_id = $1 AND template_id = $2)`,
		personID, templateID).Scan(&found)
	return found, err
}

func (e eligibility) Delete(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) error {
	tag, err := conn.Exec(ctx, `
DELETE FROM person_eligibilities WHERE person_id = $1 AND template_id = $2`, personID, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEligibilityDoesNotExist
	}
	return nil
}
