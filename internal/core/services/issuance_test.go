package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/repositories"
)

type issuanceFixture struct {
	conn          db.Querier
	persons       *repositories.PersonInMemory
	templates     *repositories.TemplateInMemory
	eligibilities *repositories.EligibilityInMemory
	issuedVCs     *repositories.IssuedVCInMemory
	logs          *repositories.IssuanceLogInMemory
	wallet        *walletStub
	person        domain.Person
	template      domain.VCTemplate
}

func newIssuanceFixture() *issuanceFixture {
	f := &issuanceFixture{
		conn:          repositories.NewMemQuerier(),
		persons:       repositories.NewPersonInMemory(),
		templates:     repositories.NewTemplateInMemory(),
		eligibilities: repositories.NewEligibilityInMemory(),
		logs:          repositories.NewIssuanceLogInMemory(),
		wallet: &walletStub{
			issueResp: &ports.IssueCredentialResponse{
				TransactionID: "tx-100",
				QRCode:        "data:image/png;base64,qr",
				DeepLink:      "wallet://claim?tx=tx-100",
			},
			claimErr: ports.ErrClaimPending,
		},
	}
	f.issuedVCs = repositories.NewIssuedVCInMemory(f.templates)
	f.person = domain.Person{ID: uuid.New(), Name: "Lin Hui", NationalID: "A123456789"}
	f.template = domain.VCTemplate{ID: uuid.New(), Name: "Disability Card", VCUID: "vc-disability", BenefitLevels: []string{"mild", "moderate", "severe"}}
	f.persons.Add(f.person)
	f.templates.Add(f.template)
	return f
}

func (f *issuanceFixture) service(claimWindow time.Duration) ports.IssuanceService {
	return NewIssuance(f.conn, f.persons, f.templates, f.eligibilities, f.issuedVCs, f.logs, f.wallet, fixedPicker{level: "moderate"}, claimWindow)
}

func (f *issuanceFixture) grantEligibility() {
	f.eligibilities.Add(domain.PersonEligibility{ID: uuid.New(), PersonID: f.person.ID, TemplateID: f.template.ID})
}

func TestIssuanceStartAndClaim(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	f.grantEligibility()
	svc := f.service(10 * time.Minute)

	started, err := svc.Start(ctx, f.person.ID, f.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "tx-100", started.TransactionID)
	assert.Equal(t, "moderate", started.BenefitLevel)
	assert.NotEmpty(t, started.QRCode)

	// Unclaimed yet: the sandbox still answers pending.
	status, err := svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusInitiated, status.Status)
	assert.Nil(t, status.CID)

	// The holder claims. The next poll commits both rows.
	f.wallet.claimErr = nil
	f.wallet.claimToken = claimedToken(t, "abc123")
	status, err = svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusUserClaimed, status.Status)
	require.NotNil(t, status.CID)
	assert.Equal(t, "abc123", *status.CID)

	claimed, err := f.issuedVCs.HasIssued(ctx, f.conn, f.person.ID, f.template.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Terminal logs are answered from storage, the sandbox is not polled again.
	calls := f.wallet.claimCalls
	status, err = svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusUserClaimed, status.Status)
	assert.Equal(t, calls, f.wallet.claimCalls)
}

func TestIssuanceStartRequiresEligibility(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	svc := f.service(10 * time.Minute)

	_, err := svc.Start(ctx, f.person.ID, f.template.ID)
	assert.ErrorIs(t, err, ErrNoEligibility)
	assert.Zero(t, f.wallet.issueCalls)
}

func TestIssuanceStartUnknownPersonAndTemplate(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	svc := f.service(10 * time.Minute)

	_, err := svc.Start(ctx, uuid.New(), f.template.ID)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = svc.Start(ctx, f.person.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestIssuanceStartWalletFailureLeavesNoState(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	f.grantEligibility()
	f.wallet.issueErr = assert.AnError
	svc := f.service(10 * time.Minute)

	_, err := svc.Start(ctx, f.person.ID, f.template.ID)
	assert.ErrorIs(t, err, ErrWalletSandbox)

	_, err = svc.Status(ctx, "tx-100")
	assert.ErrorIs(t, err, ErrIssuanceNotFound)
}

func TestIssuanceExpiry(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	f.grantEligibility()
	// A negative claim window makes the log born expired.
	svc := f.service(-time.Minute)

	_, err := svc.Start(ctx, f.person.ID, f.template.ID)
	require.NoError(t, err)

	status, err := svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusExpired, status.Status)
	assert.Zero(t, f.wallet.claimCalls)

	// The transition is written once; a second poll reads the stored state.
	status, err = svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusExpired, status.Status)
	assert.Zero(t, f.wallet.claimCalls)

	claimed, err := f.issuedVCs.HasIssued(ctx, f.conn, f.person.ID, f.template.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestIssuanceStatusReportsLapseDuringClaimPoll(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	f.grantEligibility()
	// The sandbox round trip outlives the claim window: the log is inside
	// the window when the poll starts and past it when the answer arrives.
	f.wallet.claimDelay = 200 * time.Millisecond
	svc := f.service(50 * time.Millisecond)

	_, err := svc.Start(ctx, f.person.ID, f.template.ID)
	require.NoError(t, err)

	status, err := svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusExpired, status.Status)
	assert.Equal(t, 1, f.wallet.claimCalls)

	// Only the reported status is derived; the transition itself is
	// materialized by the next poll.
	stored, err := f.logs.GetByTransactionID(ctx, f.conn, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusInitiated, stored.Status)

	status, err = svc.Status(ctx, "tx-100")
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceLogStatusExpired, status.Status)
	assert.Equal(t, 1, f.wallet.claimCalls)
}

func TestIssuanceStatusMalformedToken(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	f.grantEligibility()
	svc := f.service(10 * time.Minute)

	_, err := svc.Start(ctx, f.person.ID, f.template.ID)
	require.NoError(t, err)

	f.wallet.claimErr = nil
	f.wallet.claimToken = "not-a-jwt"
	_, err = svc.Status(ctx, "tx-100")
	assert.ErrorIs(t, err, ErrMalformedCredential)

	// The log stays initiated so the poll can be retried.
	status, err := svc.Status(ctx, "tx-100")
	require.Error(t, err)
	assert.Nil(t, status)
}

func TestIssuanceStatusUnknownTransaction(t *testing.T) {
	f := newIssuanceFixture()
	svc := f.service(10 * time.Minute)

	_, err := svc.Status(context.Background(), "no-such-tx")
	assert.ErrorIs(t, err, ErrIssuanceNotFound)
}

func TestIssuanceEligibilitiesAnnotatesClaimed(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture()
	f.grantEligibility()
	svc := f.service(10 * time.Minute)

	list, err := svc.Eligibilities(ctx, f.person.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.template.ID, list[0].Template.ID)
	assert.False(t, list[0].Claimed)

	_, err = svc.Start(ctx, f.person.ID, f.template.ID)
	require.NoError(t, err)
	f.wallet.claimErr = nil
	f.wallet.claimToken = claimedToken(t, "abc123")
	_, err = svc.Status(ctx, "tx-100")
	require.NoError(t, err)

	list, err = svc.Eligibilities(ctx, f.person.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Claimed)
}
