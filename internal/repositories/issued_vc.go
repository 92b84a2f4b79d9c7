package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrIssuedVCDoesNotExist issued vc does not exist
var ErrIssuedVCDoesNotExist = errors.New("issued vc does not exist")

type issuedVC struct{}

// NewIssuedVC returns a new issued vc repository
func NewIssuedVC() ports.IssuedVCRepository {
	return &issuedVC{}
}

func (i issuedVC) Save(ctx context.Context, conn db.Querier, vc *domain.IssuedVC) error {
	_, err := conn.Exec(ctx, `
INSERT INTO issued_vcs (id, person_id, template_id, status, cid, benefit_level, issued_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		vc.ID, vc.PersonID, vc.TemplateID, vc.Status, vc.CID, vc.BenefitLevel, vc.IssuedAt, vc.CreatedAt)
	return err
}

func (i issuedVC) GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.IssuedVC, error) {
	row := conn.QueryRow(ctx, `
SELECT id, person_id, template_id, status, cid, benefit_level, issued_at, created_at
FROM issued_vcs
WHERE id = $1`, id)
	return scanIssuedVC(row)
}

func (i issuedVC) GetLiveByPair(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) ([]*domain.IssuedVC, error) {
	rows, err := conn.Query(ctx, `
SELECT id, person_id, template_id, status, cid, benefit_level, issued_at, created_at
FROM issued_vcs
WHERE person_id = $1 AND template_id = $2 AND status = $3 AND cid IS NOT NULL
ORDER BY created_at`, personID, templateID, domain.IssuedVCStatusIssued)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vcs := make([]*domain.IssuedVC, 0)
	for rows.Next() {
		vc, err := scanIssuedVC(rows)
		if err != nil {
			return nil, err
		}
		vcs = append(vcs, vc)
	}
	return vcs, rows.Err()
}

func (i issuedVC) MarkRevokedByPair(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) (int64, error) {
	tag, err := conn.Exec(ctx, `
UPDATE issued_vcs SET status = $3
WHERE person_id = $1 AND template_id = $2 AND status <> $3`,
		personID, templateID, domain.IssuedVCStatusRevoked)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (i issuedVC) SetClaimed(ctx context.Context, conn db.Querier, id uuid.UUID, cid string, issuedAt time.Time) error {
	tag, err := conn.Exec(ctx, `
UPDATE issued_vcs SET status = $2, cid = $3, issued_at = $4
WHERE id = $1 AND status = $5`,
		id, domain.IssuedVCStatusIssued, cid, issuedAt, domain.IssuedVCStatusIssuing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIssuedVCDoesNotExist
	}
	return nil
}

func (i issuedVC) SetExpired(ctx context.Context, conn db.Querier, id uuid.UUID) error {
	tag, err := conn.Exec(ctx, `
UPDATE issued_vcs SET status = $2
WHERE id = $1 AND status = $3`,
		id, domain.IssuedVCStatusExpired, domain.IssuedVCStatusIssuing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIssuedVCDoesNotExist
	}
	return nil
}

func (i issuedVC) HasIssued(ctx context.Context, conn db.Querier, personID, templateID uuid.UUID) (bool, error) {
	var found bool
	err := conn.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM issued_vcs WHERE person_id = $1 AND template_id = $2 AND status = $3)`,
		personID, templateID, domain.IssuedVCStatusIssued).Scan(&found)
	return found, err
}

func (i issuedVC) GetVerifiedCredentials(ctx context.Context, conn db.Querier, personID uuid.UUID) ([]domain.VerifiedCredential, error) {
	rows, err := conn.Query(ctx, `
SELECT t.name, v.benefit_level, t.card_art_url, v.cid
FROM issued_vcs v
JOIN vc_templates t ON t.id = v.template_id
WHERE v.person_id = $1 AND v.status = $2
ORDER BY v.created_at`, personID, domain.IssuedVCStatusIssued)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credentials := make([]domain.VerifiedCredential, 0)
	for rows.Next() {
		vc := domain.VerifiedCredential{}
		if err := rows.Scan(&vc.TemplateName, &vc.BenefitLevel, &vc.CardArtURL, &vc.CID); err != nil {
			return nil, err
		}
		credentials = append(credentials, vc)
	}
	return credentials, rows.Err()
}

func scanIssuedVC(row pgx.Row) (*domain.IssuedVC, error) {
	vc := domain.IssuedVC{}
	err := row.Scan(&vc.ID, &vc.PersonID, &vc.TemplateID, &vc.Status, &vc.CID, &vc.BenefitLevel, &vc.IssuedAt, &vc.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrIssuedVCDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	return &vc, nil
}
