package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/core/services"
	"github.com/JunMin765677/wallet-server/internal/timeapi"
)

// StartVerificationResponse carries the verification QR and transaction handle.
type StartVerificationResponse struct {
	TransactionID string       `json:"transactionId"`
	QRCodeImage   string       `json:"qrCodeImage,omitempty"`
	AuthURI       string       `json:"authUri"`
	ExpiresAt     timeapi.Time `json:"expiresAt"`
}

// VerificationOutcomeResponse is the verification poll answer.
type VerificationOutcomeResponse struct {
	TransactionID string                            `json:"transactionId"`
	Status        string                            `json:"status"`
	Description   *string                           `json:"description,omitempty"`
	Payload       *ports.VerificationSuccessPayload `json:"payload,omitempty"`
	ExpiresAt     timeapi.Time                      `json:"expiresAt"`
}

// StartBatchResponse carries the stable scan URL of a batch session.
type StartBatchResponse struct {
	SessionUUID string       `json:"sessionUuid"`
	ScanURL     string       `json:"scanUrl"`
	ExpiresAt   timeapi.Time `json:"expiresAt"`
}

// BatchOutcomeResponse is the batch poll answer.
type BatchOutcomeResponse struct {
	SessionUUID string                        `json:"sessionUuid"`
	Status      string                        `json:"status"`
	ExpiresAt   timeapi.Time                  `json:"expiresAt"`
	Results     []VerificationOutcomeResponse `json:"results"`
}

func (s *Server) startVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started, err := s.verification.Start(ctx)
	if err != nil {
		if errors.Is(err, services.ErrVerifierSandbox) {
			writeError(ctx, w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(ctx, w, http.StatusInternalServerError, "cannot start verification")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, StartVerificationResponse{
		TransactionID: started.TransactionID,
		QRCodeImage:   started.QRCodeImage,
		AuthURI:       started.AuthURI,
		ExpiresAt:     timeapi.Time(started.ExpiresAt),
	})
}

func (s *Server) verificationStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	outcome, err := s.verification.Status(ctx, chi.URLParam(r, "transactionID"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationNotFound):
			writeError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrVerifierSandbox):
			writeError(ctx, w, http.StatusBadGateway, err.Error())
		default:
			writeError(ctx, w, http.StatusInternalServerError, "cannot poll verification")
		}
		return
	}
	writeJSON(ctx, w, http.StatusOK, toOutcomeResponse(*outcome))
}

func (s *Server) startBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started, err := s.verification.StartBatch(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "cannot open batch session")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, StartBatchResponse{
		SessionUUID: started.SessionUUID,
		ScanURL:     started.ScanURL,
		ExpiresAt:   timeapi.Time(started.ExpiresAt),
	})
}

// batchRedirect is the target of the printed QR: each scan mints a one-shot
// verification under the session and bounces the scanner to the external
// deeplink.
func (s *Server) batchRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authURI, err := s.verification.Scan(ctx, chi.URLParam(r, "sessionUUID"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBatchSessionNotFound):
			writeError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrBatchSessionExpired):
			writeError(ctx, w, http.StatusGone, err.Error())
		case errors.Is(err, services.ErrBatchSessionNotActive):
			writeError(ctx, w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrVerifierSandbox):
			writeError(ctx, w, http.StatusBadGateway, err.Error())
		default:
			writeError(ctx, w, http.StatusInternalServerError, "cannot process scan")
		}
		return
	}
	http.Redirect(w, r, authURI, http.StatusFound)
}

func (s *Server) batchStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	outcome, err := s.verification.BatchStatus(ctx, chi.URLParam(r, "sessionUUID"))
	if err != nil {
		if errors.Is(err, services.ErrBatchSessionNotFound) {
			writeError(ctx, w, http.StatusNotFound, err.Error())
			return
		}
		writeError(ctx, w, http.StatusInternalServerError, "cannot poll batch session")
		return
	}

	results := make([]VerificationOutcomeResponse, 0, len(outcome.Results))
	for _, result := range outcome.Results {
		results = append(results, toOutcomeResponse(result))
	}
	writeJSON(ctx, w, http.StatusOK, BatchOutcomeResponse{
		SessionUUID: outcome.SessionUUID,
		Status:      string(outcome.Status),
		ExpiresAt:   timeapi.Time(outcome.ExpiresAt),
		Results:     results,
	})
}

func toOutcomeResponse(outcome ports.VerificationOutcome) VerificationOutcomeResponse {
	return VerificationOutcomeResponse{
		TransactionID: outcome.TransactionID,
		Status:        string(outcome.Status),
		Description:   outcome.Description,
		Payload:       outcome.Payload,
		ExpiresAt:     timeapi.Time(outcome.ExpiresAt),
	}
}
