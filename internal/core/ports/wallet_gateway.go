package ports

import (
	"context"
	"errors"
	"time"
)

// ErrClaimPending is returned by the wallet gateway while the credential for a
// transaction has not been claimed yet. A valid intermediate state, not a failure.
var ErrClaimPending = errors.New("credential not claimed yet")

// CredentialField is one display field sent with an issuance request.
type CredentialField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IssueCredentialRequest is the wallet sandbox issuance request.
type IssueCredentialRequest struct {
	VCUID     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Fields    []CredentialField
}

// IssueCredentialResponse carries the one-time claim QR produced by the wallet
// sandbox together with the correlation id of the transaction.
type IssueCredentialResponse struct {
	TransactionID string
	QRCode        string
	DeepLink      string
}

// WalletGateway is the issuance side sandbox: it mints claim QR codes, serves
// claimed credential tokens and revokes issued credentials.
type WalletGateway interface {
	// IssueQRCode asks the sandbox for a one-time claim QR/deeplink.
	IssueQRCode(ctx context.Context, req IssueCredentialRequest) (*IssueCredentialResponse, error)
	// FetchClaimedCredential returns the claimed credential JWT for the
	// transaction, or ErrClaimPending while it is unclaimed.
	FetchClaimedCredential(ctx context.Context, transactionID string) (string, error)
	// RevokeCredential revokes the credential identified by cid and returns
	// the credential status reported by the sandbox.
	RevokeCredential(ctx context.Context, cid string) (string, error)
}
