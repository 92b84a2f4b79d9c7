package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/JunMin765677/wallet-server/internal/config"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	client "github.com/JunMin765677/wallet-server/pkg/http"
)

// WalletClient talks to the wallet sandbox: claim QR issuance, claimed
// credential retrieval and credential revocation.
type WalletClient struct {
	conn *client.Client
	cfg  config.Wallet
}

// NewWalletClient creates a wallet sandbox client.
func NewWalletClient(conn *client.Client, cfg config.Wallet) ports.WalletGateway {
	return &WalletClient{
		conn: conn,
		cfg:  cfg,
	}
}

type issueQRCodeRequest struct {
	VCUID     string                  `json:"vcUid"`
	IssueDate string                  `json:"issueDate"`
	ExpireDate string                 `json:"expireDate"`
	Fields    []ports.CredentialField `json:"fields"`
}

type issueQRCodeResponse struct {
	TransactionID string `json:"transactionId"`
	QRCode        string `json:"qrCode"`
	DeepLink      string `json:"deepLink"`
}

type claimedCredentialResponse struct {
	Credential string `json:"credential"`
}

type revocationResponse struct {
	CredentialStatus string `json:"credentialStatus"`
}

type sandboxError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IssueQRCode asks the sandbox for a one-time claim QR/deeplink.
func (c *WalletClient) IssueQRCode(ctx context.Context, req ports.IssueCredentialRequest) (*ports.IssueCredentialResponse, error) {
	body, err := json.Marshal(issueQRCodeRequest{
		VCUID:      req.VCUID,
		IssueDate:  req.IssuedAt.UTC().Format(time.RFC3339),
		ExpireDate: req.ExpiresAt.UTC().Format(time.RFC3339),
		Fields:     req.Fields,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.conn.Post(ctx, c.cfg.URL+"/api/qrcode/data", body, authHeaders(c.cfg.AuthHeaderName, c.cfg.AuthScheme, c.cfg.AuthToken))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var out issueQRCodeResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	if out.TransactionID == "" || (out.QRCode == "" && out.DeepLink == "") {
		return nil, errors.Errorf("wallet sandbox returned an incomplete issuance response: %s", string(resp))
	}
	return &ports.IssueCredentialResponse{
		TransactionID: out.TransactionID,
		QRCode:        out.QRCode,
		DeepLink:      out.DeepLink,
	}, nil
}

// FetchClaimedCredential returns the claimed credential JWT for the
// transaction. While the holder has not claimed it, the sandbox answers with
// an error body carrying a known code, mapped here to ports.ErrClaimPending.
func (c *WalletClient) FetchClaimedCredential(ctx context.Context, transactionID string) (string, error) {
	resp, err := c.conn.Get(ctx, fmt.Sprintf("%s/api/credential/nonce/%s", c.cfg.URL, url.PathEscape(transactionID)), authHeaders(c.cfg.AuthHeaderName, c.cfg.AuthScheme, c.cfg.AuthToken))
	if err != nil {
		if isSandboxErrorCode(err, c.cfg.PendingErrorCode) {
			return "", ports.ErrClaimPending
		}
		return "", errors.WithStack(err)
	}

	var out claimedCredentialResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", errors.WithStack(err)
	}
	if out.Credential == "" {
		return "", errors.Errorf("wallet sandbox returned no credential for transaction %s: %s", transactionID, string(resp))
	}
	return out.Credential, nil
}

// RevokeCredential revokes the credential identified by cid.
func (c *WalletClient) RevokeCredential(ctx context.Context, cid string) (string, error) {
	resp, err := c.conn.Put(ctx, fmt.Sprintf("%s/api/credential/%s/revocation", c.cfg.URL, url.PathEscape(cid)), nil, authHeaders(c.cfg.AuthHeaderName, c.cfg.AuthScheme, c.cfg.AuthToken))
	if err != nil {
		return "", errors.WithStack(err)
	}

	var out revocationResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", errors.WithStack(err)
	}
	return out.CredentialStatus, nil
}

// authHeaders builds the configurable sandbox auth header. The scheme prefix
// is optional.
func authHeaders(name, scheme, token string) map[string]string {
	value := token
	if scheme != "" {
		value = scheme + " " + token
	}
	return map[string]string{name: value}
}

// isSandboxErrorCode tells whether err is a non 2xx sandbox answer whose body
// carries the given error code.
func isSandboxErrorCode(err error, code string) bool {
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	var body sandboxError
	if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr != nil {
		// Some sandbox deployments wrap the code in a plain string body.
		return strings.Contains(string(statusErr.Body), code)
	}
	return body.Code == code
}
