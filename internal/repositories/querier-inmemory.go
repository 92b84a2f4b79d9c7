package repositories

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/db"
)

// MemQuerier is a db.Querier for tests backed by the in memory repositories.
// Transactions degrade to running the callback directly; the in memory
// repositories ignore the conn argument, so the nil tx is never touched.
type MemQuerier struct{}

// NewMemQuerier - Constructor
func NewMemQuerier() db.Querier {
	return &MemQuerier{}
}

// Begin implements db.Querier
func (q *MemQuerier) Begin(_ context.Context) (pgx.Tx, error) {
	return nil, nil
}

// BeginFunc implements db.Querier
func (q *MemQuerier) BeginFunc(_ context.Context, f func(pgx.Tx) error) error {
	return f(nil)
}

// Exec implements db.Querier
func (q *MemQuerier) Exec(_ context.Context, _ string, _ ...interface{}) (pgconn.CommandTag, error) {
	return nil, nil
}

// Query implements db.Querier
func (q *MemQuerier) Query(_ context.Context, _ string, _ ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

// QueryRow implements db.Querier
func (q *MemQuerier) QueryRow(_ context.Context, _ string, _ ...interface{}) pgx.Row {
	return nil
}
