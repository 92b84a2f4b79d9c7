package ports

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrResultPending is returned by the verifier gateway while the result of a
// transaction is not ready. A valid intermediate state, not a failure.
var ErrResultPending = errors.New("verification result not ready yet")

// VerificationQRCode carries the verification QR produced by the verifier sandbox.
type VerificationQRCode struct {
	QRCodeImage string
	AuthURI     string
}

// VerificationClaim is one disclosed claim of a presented credential.
type VerificationClaim struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VerificationClaimSet groups the claims disclosed by one presented credential.
type VerificationClaimSet struct {
	Claims []VerificationClaim `json:"claims"`
}

// VerificationResult is the verifier sandbox result for one transaction.
// Raw keeps the unparsed sandbox payload for traceability.
type VerificationResult struct {
	VerifyResult bool
	Description  string
	ClaimSets    []VerificationClaimSet
	Raw          json.RawMessage
}

// VerifierGateway is the verification side sandbox.
type VerifierGateway interface {
	// CreateQRCode asks the sandbox for a verification QR bound to the given
	// transaction id.
	CreateQRCode(ctx context.Context, transactionID string) (*VerificationQRCode, error)
	// FetchResult returns the verification outcome for the transaction, or
	// ErrResultPending while the holder has not completed the presentation.
	FetchResult(ctx context.Context, transactionID string) (*VerificationResult, error)
}
