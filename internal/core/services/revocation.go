package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/log"
	"github.com/JunMin765677/wallet-server/internal/repositories"
)

var (
	// ErrUpstreamRevocation an external revocation failed before any local
	// state was touched. Safe to retry.
	ErrUpstreamRevocation = errors.New("upstream revocation failed, local state unchanged")
	// ErrPartialRevocation the external credentials were revoked but the local
	// transaction failed afterwards. Local state may disagree with the wallet
	// until the operation is retried.
	ErrPartialRevocation = errors.New("local revocation failed after upstream succeeded")
)

type revocation struct {
	conn          db.Querier
	issuedVCs     ports.IssuedVCRepository
	eligibilities ports.EligibilityRepository
	wallet        ports.WalletGateway
}

// NewRevocation creates the revocation service
func NewRevocation(conn db.Querier, issuedVCs ports.IssuedVCRepository, eligibilities ports.EligibilityRepository, wallet ports.WalletGateway) ports.RevocationService {
	return &revocation{
		conn:          conn,
		issuedVCs:     issuedVCs,
		eligibilities: eligibilities,
		wallet:        wallet,
	}
}

// Revoke revokes every live external credential for (person, template) and
// only then, in one local transaction, marks all issued rows revoked and
// removes the eligibility. The two halves cannot share a transaction, so the
// external side runs first: an upstream failure aborts with the local store
// untouched, and a local failure after upstream success is reported as
// partial so the operator retries.
func (r *revocation) Revoke(ctx context.Context, personID, templateID uuid.UUID) error {
	eligible, err := r.eligibilities.Exists(ctx, r.conn, personID, templateID)
	if err != nil {
		return err
	}
	if !eligible {
		return ErrNoEligibility
	}

	live, err := r.issuedVCs.GetLiveByPair(ctx, r.conn, personID, templateID)
	if err != nil {
		return err
	}
	for _, vc := range live {
		if _, err := r.wallet.RevokeCredential(ctx, *vc.CID); err != nil {
			log.Error(ctx, "wallet sandbox revocation failed", "err", err, "cid", *vc.CID)
			return fmt.Errorf("%w: credential %s: %v", ErrUpstreamRevocation, *vc.CID, err)
		}
	}

	err = r.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := r.issuedVCs.MarkRevokedByPair(ctx, tx, personID, templateID); err != nil {
			return err
		}
		if err := r.eligibilities.Delete(ctx, tx, personID, templateID); err != nil && !errors.Is(err, repositories.ErrEligibilityDoesNotExist) {
			return err
		}
		return nil
	})
	if err != nil {
		if len(live) > 0 {
			log.Error(ctx, "local revocation failed after upstream succeeded", "err", err, "personID", personID, "templateID", templateID)
			return fmt.Errorf("%w: %v", ErrPartialRevocation, err)
		}
		return err
	}
	return nil
}
