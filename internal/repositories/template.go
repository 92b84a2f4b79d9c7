package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrTemplateDoesNotExist template does not exist
var ErrTemplateDoesNotExist = errors.New("vc template does not exist")

type template struct{}

// NewTemplate returns a new vc template repository
func NewTemplate() ports.TemplateRepository {
	return &template{}
}

func (t template) GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.VCTemplate, error) {
	row := conn.QueryRow(ctx, `
SELECT id, name, vc_uid, card_art_url, benefit_levels, created_at
FROM vc_templates
WHERE id = $1`, id)
	return scanTemplate(row)
}

func scanTemplate(row pgx.Row) (*domain.VCTemplate, error) {
	t := domain.VCTemplate{}
	var levels pgtype.TextArray
	err := row.Scan(&t.ID, &t.Name, &t.VCUID, &t.CardArtURL, &levels, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrTemplateDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	if err := levels.AssignTo(&t.BenefitLevels); err != nil {
		return nil, err
	}
	return &t, nil
}
