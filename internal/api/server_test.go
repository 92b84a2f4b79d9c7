package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/core/services"
	"github.com/JunMin765677/wallet-server/internal/health"
	"github.com/JunMin765677/wallet-server/internal/repositories"
	"github.com/JunMin765677/wallet-server/pkg/cache"
)

type walletGatewayStub struct{}

func (walletGatewayStub) IssueQRCode(_ context.Context, _ ports.IssueCredentialRequest) (*ports.IssueCredentialResponse, error) {
	return &ports.IssueCredentialResponse{TransactionID: "tx-1", QRCode: "qr", DeepLink: "wallet://claim"}, nil
}

func (walletGatewayStub) FetchClaimedCredential(_ context.Context, _ string) (string, error) {
	return "", ports.ErrClaimPending
}

func (walletGatewayStub) RevokeCredential(_ context.Context, _ string) (string, error) {
	return "REVOKED", nil
}

type verifierGatewayStub struct{}

func (verifierGatewayStub) CreateQRCode(_ context.Context, _ string) (*ports.VerificationQRCode, error) {
	return &ports.VerificationQRCode{QRCodeImage: "qr", AuthURI: "openid4vp://authorize?request_uri=xyz"}, nil
}

func (verifierGatewayStub) FetchResult(_ context.Context, _ string) (*ports.VerificationResult, error) {
	return nil, ports.ErrResultPending
}

type statsStub struct{}

func (statsStub) GetAdminStats(_ context.Context) (*ports.AdminStats, error) {
	return &ports.AdminStats{Persons: 1}, nil
}

type apiFixture struct {
	mux      *chi.Mux
	person   domain.Person
	template domain.VCTemplate
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	conn := repositories.NewMemQuerier()
	persons := repositories.NewPersonInMemory()
	templates := repositories.NewTemplateInMemory()
	eligibilities := repositories.NewEligibilityInMemory()
	issuedVCs := repositories.NewIssuedVCInMemory(templates)
	issuanceLogs := repositories.NewIssuanceLogInMemory()
	verificationLogs := repositories.NewVerificationLogInMemory()
	batchSessions := repositories.NewBatchSessionInMemory()
	sessions := repositories.NewSessionCached(cache.NewMemoryCache(), time.Hour)

	person := domain.Person{ID: uuid.New(), Name: "Lin Hui", NationalID: "A123456789"}
	template := domain.VCTemplate{ID: uuid.New(), Name: "Disability Card", VCUID: "vc-disability", BenefitLevels: []string{"mild"}}
	persons.Add(person)
	templates.Add(template)
	eligibilities.Add(domain.PersonEligibility{ID: uuid.New(), PersonID: person.ID, TemplateID: template.ID})

	issuanceService := services.NewIssuance(conn, persons, templates, eligibilities, issuedVCs, issuanceLogs, walletGatewayStub{}, services.NewRandomBenefitPicker(), 10*time.Minute)
	verificationService := services.NewVerification(conn, persons, issuedVCs, verificationLogs, batchSessions, verifierGatewayStub{}, 5*time.Minute, 3*time.Hour, "https://broker.example.com")
	revocationService := services.NewRevocation(conn, issuedVCs, eligibilities, walletGatewayStub{})

	server := NewServer(conn, health.New(), persons, sessions, issuanceService, verificationService, revocationService, statsStub{})
	mux := chi.NewRouter()
	server.Routes(mux)
	return &apiFixture{mux: mux, person: person, template: template}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/v1/session", "", CreateSessionRequest{PersonID: f.person.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSessionAndIssuanceFlow(t *testing.T) {
	f := newAPIFixture(t)

	// The issuance surface requires a live session.
	rr := f.do(t, http.MethodGet, "/v1/issuance/eligibilities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := f.login(t)

	rr = f.do(t, http.MethodGet, "/v1/issuance/eligibilities", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var eligibilities []EligibleTemplateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &eligibilities))
	require.Len(t, eligibilities, 1)
	assert.Equal(t, f.template.ID, eligibilities[0].TemplateID)
	assert.False(t, eligibilities[0].Claimed)

	rr = f.do(t, http.MethodPost, "/v1/issuance/requests", token, StartIssuanceRequest{TemplateID: f.template.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	var started StartIssuanceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	assert.Equal(t, "tx-1", started.TransactionID)

	rr = f.do(t, http.MethodGet, "/v1/issuance/requests/tx-1", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var status IssuanceStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, string(domain.IssuanceLogStatusInitiated), status.Status)
}

func TestSessionUnknownPerson(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/session", "", CreateSessionRequest{PersonID: uuid.New()})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBatchScanRedirect(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/verification/batch-sessions", "", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var started StartBatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	assert.Contains(t, started.ScanURL, started.SessionUUID)

	rr = f.do(t, http.MethodGet, "/v1/verification/batch-sessions/"+started.SessionUUID+"/redirect", "", nil)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "openid4vp://authorize?request_uri=xyz", rr.Header().Get("Location"))

	rr = f.do(t, http.MethodGet, "/v1/verification/batch-sessions/"+started.SessionUUID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var outcome BatchOutcomeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, string(domain.VerificationStatusInitiated), outcome.Results[0].Status)

	rr = f.do(t, http.MethodGet, "/v1/verification/batch-sessions/"+uuid.NewString()+"/redirect", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminRevocation(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/admin/revocations", "", RevokeRequest{PersonID: f.person.ID, TemplateID: f.template.ID})
	assert.Equal(t, http.StatusOK, rr.Code)

	// The eligibility is gone afterwards.
	rr = f.do(t, http.MethodPost, "/v1/admin/revocations", "", RevokeRequest{PersonID: f.person.ID, TemplateID: f.template.ID})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
