package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/JunMin765677/wallet-server/internal/config"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	client "github.com/JunMin765677/wallet-server/pkg/http"
)

// VerifierClient talks to the verifier sandbox: verification QR creation and
// result retrieval.
type VerifierClient struct {
	conn *client.Client
	cfg  config.Verifier
}

// NewVerifierClient creates a verifier sandbox client.
func NewVerifierClient(conn *client.Client, cfg config.Verifier) ports.VerifierGateway {
	return &VerifierClient{
		conn: conn,
		cfg:  cfg,
	}
}

type createQRCodeResponse struct {
	QRCodeImage string `json:"qrcodeImage"`
	AuthURI     string `json:"authUri"`
}

type fetchResultRequest struct {
	TransactionID string `json:"transactionId"`
}

type fetchResultResponse struct {
	VerifyResult      bool                         `json:"verifyResult"`
	ResultDescription string                       `json:"resultDescription"`
	Data              []ports.VerificationClaimSet `json:"data"`
}

// CreateQRCode asks the sandbox for a verification QR bound to the transaction id.
func (c *VerifierClient) CreateQRCode(ctx context.Context, transactionID string) (*ports.VerificationQRCode, error) {
	endpoint := fmt.Sprintf("%s/api/oidvp/qrcode?ref=%s&transactionId=%s",
		c.cfg.URL, url.QueryEscape(c.cfg.RequestRef), url.QueryEscape(transactionID))
	resp, err := c.conn.Get(ctx, endpoint, authHeaders(c.cfg.AuthHeaderName, c.cfg.AuthScheme, c.cfg.AuthToken))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var out createQRCodeResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	if out.AuthURI == "" {
		return nil, errors.Errorf("verifier sandbox returned an incomplete qrcode response: %s", string(resp))
	}
	return &ports.VerificationQRCode{
		QRCodeImage: out.QRCodeImage,
		AuthURI:     out.AuthURI,
	}, nil
}

// FetchResult returns the verification outcome for the transaction. While the
// holder has not completed the presentation, the sandbox answers 400 with a
// known embedded code, mapped here to ports.ErrResultPending.
func (c *VerifierClient) FetchResult(ctx context.Context, transactionID string) (*ports.VerificationResult, error) {
	body, err := json.Marshal(fetchResultRequest{TransactionID: transactionID})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.conn.Post(ctx, c.cfg.URL+"/api/oidvp/result", body, authHeaders(c.cfg.AuthHeaderName, c.cfg.AuthScheme, c.cfg.AuthToken))
	if err != nil {
		if isSandboxErrorCode(err, c.cfg.PendingErrorCode) {
			return nil, ports.ErrResultPending
		}
		return nil, errors.WithStack(err)
	}

	var out fetchResultResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return &ports.VerificationResult{
		VerifyResult: out.VerifyResult,
		Description:  out.ResultDescription,
		ClaimSets:    out.Data,
		Raw:          json.RawMessage(resp),
	}, nil
}
