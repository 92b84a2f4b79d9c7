package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/services"
	"github.com/JunMin765677/wallet-server/internal/timeapi"
)

// EligibleTemplateResponse is one entry of the eligibility listing.
type EligibleTemplateResponse struct {
	TemplateID    uuid.UUID `json:"templateId"`
	Name          string    `json:"name"`
	CardArtURL    string    `json:"cardArtUrl"`
	BenefitLevels []string  `json:"benefitLevels"`
	Claimed       bool      `json:"claimed"`
}

// StartIssuanceRequest selects the template to claim.
type StartIssuanceRequest struct {
	TemplateID uuid.UUID `json:"templateId"`
}

// StartIssuanceResponse carries the claim QR and the transaction handle.
type StartIssuanceResponse struct {
	IssuedVcID    uuid.UUID    `json:"issuedVcId"`
	TransactionID string       `json:"transactionId"`
	QRCode        string       `json:"qrCode,omitempty"`
	DeepLink      string       `json:"deepLink,omitempty"`
	BenefitLevel  string       `json:"benefitLevel"`
	ExpiresAt     timeapi.Time `json:"expiresAt"`
}

// IssuanceStatusResponse is the issuance poll answer.
type IssuanceStatusResponse struct {
	TransactionID string       `json:"transactionId"`
	Status        string       `json:"status"`
	CID           *string      `json:"cid,omitempty"`
	ExpiresAt     timeapi.Time `json:"expiresAt"`
}

func (s *Server) listEligibilities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, found := actingPersonFromContext(ctx)
	if !found {
		writeError(ctx, w, http.StatusUnauthorized, "missing session token")
		return
	}

	eligibilities, err := s.issuance.Eligibilities(ctx, personID)
	if err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			writeError(ctx, w, http.StatusNotFound, "person not found")
			return
		}
		writeError(ctx, w, http.StatusInternalServerError, "cannot list eligibilities")
		return
	}

	out := make([]EligibleTemplateResponse, 0, len(eligibilities))
	for _, eligibility := range eligibilities {
		out = append(out, EligibleTemplateResponse{
			TemplateID:    eligibility.Template.ID,
			Name:          eligibility.Template.Name,
			CardArtURL:    eligibility.Template.CardArtURL,
			BenefitLevels: eligibility.Template.BenefitLevels,
			Claimed:       eligibility.Claimed,
		})
	}
	writeJSON(ctx, w, http.StatusOK, out)
}

func (s *Server) startIssuance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, found := actingPersonFromContext(ctx)
	if !found {
		writeError(ctx, w, http.StatusUnauthorized, "missing session token")
		return
	}
	var req StartIssuanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TemplateID == uuid.Nil {
		writeError(ctx, w, http.StatusBadRequest, "templateId is required")
		return
	}

	started, err := s.issuance.Start(ctx, personID, req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPersonNotFound), errors.Is(err, services.ErrTemplateNotFound):
			writeError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrNoEligibility):
			writeError(ctx, w, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrWalletSandbox):
			writeError(ctx, w, http.StatusBadGateway, err.Error())
		default:
			writeError(ctx, w, http.StatusInternalServerError, "cannot start issuance")
		}
		return
	}

	writeJSON(ctx, w, http.StatusCreated, StartIssuanceResponse{
		IssuedVcID:    started.IssuedVcID,
		TransactionID: started.TransactionID,
		QRCode:        started.QRCode,
		DeepLink:      started.DeepLink,
		BenefitLevel:  started.BenefitLevel,
		ExpiresAt:     timeapi.Time(started.ExpiresAt),
	})
}

func (s *Server) issuanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := s.issuance.Status(ctx, chi.URLParam(r, "transactionID"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIssuanceNotFound):
			writeError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrWalletSandbox), errors.Is(err, services.ErrMalformedCredential):
			writeError(ctx, w, http.StatusBadGateway, err.Error())
		default:
			writeError(ctx, w, http.StatusInternalServerError, "cannot poll issuance")
		}
		return
	}

	writeJSON(ctx, w, http.StatusOK, IssuanceStatusResponse{
		TransactionID: status.TransactionID,
		Status:        string(status.Status),
		CID:           status.CID,
		ExpiresAt:     timeapi.Time(status.ExpiresAt),
	})
}
