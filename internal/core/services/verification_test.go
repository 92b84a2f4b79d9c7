package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JunMin765677/wallet-server/internal/common"
	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
)

func successResult(nationalID string) *ports.VerificationResult {
	return &ports.VerificationResult{
		VerifyResult: true,
		ClaimSets: []ports.VerificationClaimSet{
			{Claims: []ports.VerificationClaim{
				{Name: "name", Value: "Lin Hui"},
				{Name: "nationalId", Value: nationalID},
			}},
		},
		Raw: json.RawMessage(`{"verifyResult":true}`),
	}
}

func TestVerificationStartAndSuccess(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	person := domain.Person{
		ID:                 uuid.New(),
		Name:               "Lin Hui",
		NationalID:         "A123456789",
		EmergencyContact:   domain.EmergencyContact{Name: "Lin Mei", Phone: "0912345678", Relation: "sibling"},
		ReviewingAuthority: "City Social Affairs Bureau",
		ReviewerName:       "Chen Wei",
	}
	f.persons.Add(person)

	template := domain.VCTemplate{ID: uuid.New(), Name: "Disability Card", CardArtURL: "https://cdn.example.com/card.png"}
	f.templates.Add(template)
	vc := domain.NewIssuedVC(person.ID, template.ID, "moderate")
	vc.Status = domain.IssuedVCStatusIssued
	vc.CID = common.ToPointer("abc123")
	require.NoError(t, f.issuedVCs.Save(ctx, f.conn, vc))

	started, err := f.svc.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, started.AuthURI)

	// Result not ready yet.
	outcome, err := f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusInitiated, outcome.Status)

	f.verifier.mu.Lock()
	f.verifier.results[started.TransactionID] = successResult(person.NationalID)
	f.verifier.mu.Unlock()

	outcome, err = f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusSuccess, outcome.Status)
	require.NotNil(t, outcome.Payload)
	assert.Equal(t, "Lin Hui", outcome.Payload.PersonName)
	assert.Equal(t, "A123456789", outcome.Payload.NationalID)
	require.NotNil(t, outcome.Payload.EmergencyContact)
	assert.Equal(t, "Lin Mei", outcome.Payload.EmergencyContact.Name)
	assert.Equal(t, "City Social Affairs Bureau", outcome.Payload.ReviewingAuthority)
	require.Len(t, outcome.Payload.VerifiedCredentials, 1)
	assert.Equal(t, "Disability Card", outcome.Payload.VerifiedCredentials[0].TemplateName)
	assert.Equal(t, "moderate", outcome.Payload.VerifiedCredentials[0].BenefitLevel)
	assert.JSONEq(t, `{"verifyResult":true}`, string(outcome.Payload.Raw))
	assert.False(t, outcome.Payload.Orphaned)

	// Terminal: the sandbox is not polled again.
	calls := f.verifier.calls(started.TransactionID)
	outcome, err = f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusSuccess, outcome.Status)
	assert.Equal(t, calls, f.verifier.calls(started.TransactionID))
}

func TestVerificationFailedResult(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	started, err := f.svc.Start(ctx)
	require.NoError(t, err)

	f.verifier.mu.Lock()
	f.verifier.results[started.TransactionID] = &ports.VerificationResult{
		VerifyResult: false,
		Description:  "signature check failed",
		Raw:          json.RawMessage(`{"verifyResult":false}`),
	}
	f.verifier.mu.Unlock()

	outcome, err := f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusFailed, outcome.Status)
	require.NotNil(t, outcome.Description)
	assert.Equal(t, "signature check failed", *outcome.Description)
	assert.Nil(t, outcome.Payload)
}

func TestVerificationMissingPersonalIDClaim(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	started, err := f.svc.Start(ctx)
	require.NoError(t, err)

	f.verifier.mu.Lock()
	f.verifier.results[started.TransactionID] = &ports.VerificationResult{
		VerifyResult: true,
		ClaimSets:    []ports.VerificationClaimSet{{Claims: []ports.VerificationClaim{{Name: "name", Value: "Lin Hui"}}}},
		Raw:          json.RawMessage(`{"verifyResult":true}`),
	}
	f.verifier.mu.Unlock()

	outcome, err := f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusErrorMissingUUID, outcome.Status)
}

func TestVerificationUnknownPerson(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	started, err := f.svc.Start(ctx)
	require.NoError(t, err)

	f.verifier.mu.Lock()
	f.verifier.results[started.TransactionID] = successResult("Z999999999")
	f.verifier.mu.Unlock()

	outcome, err := f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusErrorMissingUUID, outcome.Status)
	assert.Nil(t, outcome.Payload)
}

func TestVerificationExpiry(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(-time.Minute, 3*time.Hour)

	started, err := f.svc.Start(ctx)
	require.NoError(t, err)

	outcome, err := f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusExpired, outcome.Status)
	assert.Zero(t, f.verifier.calls(started.TransactionID))

	outcome, err = f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusExpired, outcome.Status)
	assert.Zero(t, f.verifier.calls(started.TransactionID))
}

func TestVerificationSandboxHardError(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	started, err := f.svc.Start(ctx)
	require.NoError(t, err)

	f.verifier.mu.Lock()
	f.verifier.errs[started.TransactionID] = assert.AnError
	f.verifier.mu.Unlock()

	_, err = f.svc.Status(ctx, started.TransactionID)
	assert.ErrorIs(t, err, ErrVerifierSandbox)

	// The log stays initiated: a later poll can still succeed.
	f.verifier.mu.Lock()
	delete(f.verifier.errs, started.TransactionID)
	f.verifier.mu.Unlock()
	outcome, err := f.svc.Status(ctx, started.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusInitiated, outcome.Status)
}

func TestVerificationOrphanedSuccess(t *testing.T) {
	ctx := context.Background()
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	// A success row whose person has since been removed from the store.
	record := domain.NewVerificationLog(uuid.NewString(), time.Now().UTC().Add(5*time.Minute), nil)
	record.Status = domain.VerificationStatusSuccess
	record.VerifiedPersonID = common.ToPointer(uuid.New())
	record.ReturnedData = json.RawMessage(`{"verifyResult":true}`)
	require.NoError(t, f.logs.Save(ctx, f.conn, record))

	outcome, err := f.svc.Status(ctx, record.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationStatusSuccess, outcome.Status)
	require.NotNil(t, outcome.Payload)
	assert.True(t, outcome.Payload.Orphaned)
	assert.Empty(t, outcome.Payload.PersonName)
	assert.JSONEq(t, `{"verifyResult":true}`, string(outcome.Payload.Raw))
}

func TestVerificationStatusUnknownTransaction(t *testing.T) {
	f := newVerificationFixture(5*time.Minute, 3*time.Hour)

	_, err := f.svc.Status(context.Background(), "no-such-tx")
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}
