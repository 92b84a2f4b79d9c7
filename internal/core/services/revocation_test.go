package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JunMin765677/wallet-server/internal/common"
	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/repositories"
)

type revocationFixture struct {
	conn          db.Querier
	templates     *repositories.TemplateInMemory
	eligibilities *repositories.EligibilityInMemory
	issuedVCs     *repositories.IssuedVCInMemory
	wallet        *walletStub
	personID      uuid.UUID
	templateID    uuid.UUID
	expiredVCID   uuid.UUID
}

func newRevocationFixture(t *testing.T) *revocationFixture {
	f := &revocationFixture{
		conn:          repositories.NewMemQuerier(),
		templates:     repositories.NewTemplateInMemory(),
		eligibilities: repositories.NewEligibilityInMemory(),
		wallet:        &walletStub{},
		personID:      uuid.New(),
		templateID:    uuid.New(),
	}
	f.issuedVCs = repositories.NewIssuedVCInMemory(f.templates)
	f.templates.Add(domain.VCTemplate{ID: f.templateID, Name: "Disability Card"})
	f.eligibilities.Add(domain.PersonEligibility{ID: uuid.New(), PersonID: f.personID, TemplateID: f.templateID})

	for _, cid := range []string{"cid-1", "cid-2"} {
		vc := domain.NewIssuedVC(f.personID, f.templateID, "moderate")
		vc.Status = domain.IssuedVCStatusIssued
		vc.CID = common.ToPointer(cid)
		require.NoError(t, f.issuedVCs.Save(context.Background(), f.conn, vc))
	}

	// An older attempt that lapsed unclaimed. It holds no cid, so it is
	// never sent upstream, but the local revocation still sweeps it.
	expired := domain.NewIssuedVC(f.personID, f.templateID, "moderate")
	expired.Status = domain.IssuedVCStatusExpired
	require.NoError(t, f.issuedVCs.Save(context.Background(), f.conn, expired))
	f.expiredVCID = expired.ID
	return f
}

func TestRevocationHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newRevocationFixture(t)
	svc := NewRevocation(f.conn, f.issuedVCs, f.eligibilities, f.wallet)

	require.NoError(t, svc.Revoke(ctx, f.personID, f.templateID))

	assert.ElementsMatch(t, []string{"cid-1", "cid-2"}, f.wallet.revoked)

	live, err := f.issuedVCs.GetLiveByPair(ctx, f.conn, f.personID, f.templateID)
	require.NoError(t, err)
	assert.Empty(t, live)

	claimed, err := f.issuedVCs.HasIssued(ctx, f.conn, f.personID, f.templateID)
	require.NoError(t, err)
	assert.False(t, claimed)

	swept, err := f.issuedVCs.GetByID(ctx, f.conn, f.expiredVCID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssuedVCStatusRevoked, swept.Status)

	eligible, err := f.eligibilities.Exists(ctx, f.conn, f.personID, f.templateID)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestRevocationUpstreamFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newRevocationFixture(t)
	f.wallet.revokeErr = assert.AnError
	svc := NewRevocation(f.conn, f.issuedVCs, f.eligibilities, f.wallet)

	err := svc.Revoke(ctx, f.personID, f.templateID)
	assert.ErrorIs(t, err, ErrUpstreamRevocation)

	live, err := f.issuedVCs.GetLiveByPair(ctx, f.conn, f.personID, f.templateID)
	require.NoError(t, err)
	assert.Len(t, live, 2)

	eligible, err := f.eligibilities.Exists(ctx, f.conn, f.personID, f.templateID)
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestRevocationUnknownEligibility(t *testing.T) {
	f := newRevocationFixture(t)
	svc := NewRevocation(f.conn, f.issuedVCs, f.eligibilities, f.wallet)

	err := svc.Revoke(context.Background(), f.personID, uuid.New())
	assert.ErrorIs(t, err, ErrNoEligibility)
	assert.Empty(t, f.wallet.revoked)
}

func TestRevocationIsIdempotentOnLocalRows(t *testing.T) {
	ctx := context.Background()
	f := newRevocationFixture(t)
	svc := NewRevocation(f.conn, f.issuedVCs, f.eligibilities, f.wallet)

	require.NoError(t, svc.Revoke(ctx, f.personID, f.templateID))

	// The eligibility is gone, so a second revocation reports not found.
	err := svc.Revoke(ctx, f.personID, f.templateID)
	assert.ErrorIs(t, err, ErrNoEligibility)
}
