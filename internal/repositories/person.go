package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// ErrPersonDoesNotExist person does not exist
var ErrPersonDoesNotExist = errors.New("person does not exist")

const personFields = `id, name, national_id, monthly_income, total_assets, eligible_from, eligible_until,
       emergency_name, emergency_phone, emergency_relation, reviewing_authority, reviewer_name, created_at`

type person struct{}

// NewPerson returns a new person repository
func NewPerson() ports.PersonRepository {
	return &person{}
}

func (p person) GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.Person, error) {
	row := conn.QueryRow(ctx, `SELECT `+personFields+` FROM persons WHERE id = $1`, id)
	return scanPerson(row)
}

func (p person) GetByNationalID(ctx context.Context, conn db.Querier, nationalID string) (*domain.Person, error) {
	row := conn.QueryRow(ctx, `SELECT `+personFields+` FROM persons WHERE national_id = $1`, nationalID)
	return scanPerson(row)
}

func scanPerson(row pgx.Row) (*domain.Person, error) {
	p := domain.Person{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.NationalID,
		&p.MonthlyIncome,
		&p.TotalAssets,
		&p.EligibleFrom,
		&p.EligibleUntil,
		&p.EmergencyContact.Name,
		&p.EmergencyContact.Phone,
		&p.EmergencyContact.Relation,
		&p.ReviewingAuthority,
		&p.ReviewerName,
		&p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrPersonDoesNotExist
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
