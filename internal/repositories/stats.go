package repositories

import (
	"context"

	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
)

type stats struct {
	conn *db.Sqlx
}

// NewStats returns the admin dashboard counters read model. It runs on the
// sqlx connection because it is a pure reporting query with no transaction
// scoping needs.
func NewStats(conn *db.Sqlx) ports.StatsRepository {
	return &stats{conn: conn}
}

func (s *stats) GetAdminStats(ctx context.Context) (*ports.AdminStats, error) {
	out := ports.AdminStats{}
	err := s.conn.DB.GetContext(ctx, &out, `
SELECT
    (SELECT COUNT(*) FROM persons)                                              AS persons,
    (SELECT COUNT(*) FROM person_eligibilities)                                 AS eligibilities,
    (SELECT COUNT(*) FROM issued_vcs WHERE status = 'issuing')                  AS issuing_vcs,
    (SELECT COUNT(*) FROM issued_vcs WHERE status = 'issued')                   AS issued_vcs,
    (SELECT COUNT(*) FROM issued_vcs WHERE status = 'expired')                  AS expired_vcs,
    (SELECT COUNT(*) FROM issued_vcs WHERE status = 'revoked')                  AS revoked_vcs,
    (SELECT COUNT(*) FROM verification_logs WHERE status = 'success')           AS verification_success,
    (SELECT COUNT(*) FROM verification_logs WHERE status = 'failed')            AS verification_failed,
    (SELECT COUNT(*) FROM batch_verification_sessions WHERE status = 'active')  AS active_batch_sessions`)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
