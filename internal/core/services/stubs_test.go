package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/repositories"
)

type walletStub struct {
	mu         sync.Mutex
	issueResp  *ports.IssueCredentialResponse
	issueErr   error
	issueCalls int
	claimToken string
	claimErr   error
	claimDelay time.Duration
	claimCalls int
	revokeErr  error
	revoked    []string
}

func (w *walletStub) IssueQRCode(_ context.Context, _ ports.IssueCredentialRequest) (*ports.IssueCredentialResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issueCalls++
	if w.issueErr != nil {
		return nil, w.issueErr
	}
	return w.issueResp, nil
}

func (w *walletStub) FetchClaimedCredential(_ context.Context, _ string) (string, error) {
	if w.claimDelay > 0 {
		time.Sleep(w.claimDelay)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.claimCalls++
	if w.claimErr != nil {
		return "", w.claimErr
	}
	return w.claimToken, nil
}

func (w *walletStub) RevokeCredential(_ context.Context, cid string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.revokeErr != nil {
		return "", w.revokeErr
	}
	w.revoked = append(w.revoked, cid)
	return "REVOKED", nil
}

type verifierStub struct {
	mu         sync.Mutex
	qr         *ports.VerificationQRCode
	createErr  error
	created    []string
	results    map[string]*ports.VerificationResult
	errs       map[string]error
	fetchCalls map[string]int
}

func newVerifierStub() *verifierStub {
	return &verifierStub{
		qr:         &ports.VerificationQRCode{QRCodeImage: "data:image/png;base64,xxx", AuthURI: "openid4vp://authorize?request_uri=xyz"},
		results:    make(map[string]*ports.VerificationResult),
		errs:       make(map[string]error),
		fetchCalls: make(map[string]int),
	}
}

func (v *verifierStub) CreateQRCode(_ context.Context, transactionID string) (*ports.VerificationQRCode, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.createErr != nil {
		return nil, v.createErr
	}
	v.created = append(v.created, transactionID)
	return v.qr, nil
}

func (v *verifierStub) FetchResult(_ context.Context, transactionID string) (*ports.VerificationResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fetchCalls[transactionID]++
	if err, found := v.errs[transactionID]; found {
		return nil, err
	}
	if result, found := v.results[transactionID]; found {
		return result, nil
	}
	return nil, ports.ErrResultPending
}

func (v *verifierStub) calls(transactionID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetchCalls[transactionID]
}

type fixedPicker struct{ level string }

func (p fixedPicker) Pick(_ []string) (string, error) { return p.level, nil }

// claimedToken builds an unsigned credential token whose jti embeds the cid,
// in the shape the wallet sandbox serves claimed credentials.
func claimedToken(t *testing.T, cid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"jti": "https://wallet.example.com/api/credential/" + cid,
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return signed
}

type verificationFixture struct {
	conn      db.Querier
	persons   *repositories.PersonInMemory
	templates *repositories.TemplateInMemory
	issuedVCs *repositories.IssuedVCInMemory
	logs      *repositories.VerificationLogInMemory
	sessions  *repositories.BatchSessionInMemory
	verifier  *verifierStub
	svc       ports.VerificationService
}

func newVerificationFixture(window, sessionWindow time.Duration) *verificationFixture {
	f := &verificationFixture{
		conn:      repositories.NewMemQuerier(),
		persons:   repositories.NewPersonInMemory(),
		templates: repositories.NewTemplateInMemory(),
		logs:      repositories.NewVerificationLogInMemory(),
		sessions:  repositories.NewBatchSessionInMemory(),
		verifier:  newVerifierStub(),
	}
	f.issuedVCs = repositories.NewIssuedVCInMemory(f.templates)
	f.svc = NewVerification(f.conn, f.persons, f.issuedVCs, f.logs, f.sessions, f.verifier, window, sessionWindow, "https://broker.example.com")
	return f
}
