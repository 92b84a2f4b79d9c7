package ports

import "context"

// AdminStats is the admin dashboard counters read model.
type AdminStats struct {
	Persons             int64 `db:"persons" json:"persons"`
	Eligibilities       int64 `db:"eligibilities" json:"eligibilities"`
	IssuingVCs          int64 `db:"issuing_vcs" json:"issuingVcs"`
	IssuedVCs           int64 `db:"issued_vcs" json:"issuedVcs"`
	ExpiredVCs          int64 `db:"expired_vcs" json:"expiredVcs"`
	RevokedVCs          int64 `db:"revoked_vcs" json:"revokedVcs"`
	VerificationSuccess int64 `db:"verification_success" json:"verificationSuccess"`
	VerificationFailed  int64 `db:"verification_failed" json:"verificationFailed"`
	ActiveBatchSessions int64 `db:"active_batch_sessions" json:"activeBatchSessions"`
}

// StatsRepository the interface that defines the available methods
type StatsRepository interface {
	GetAdminStats(ctx context.Context) (*AdminStats, error)
}
