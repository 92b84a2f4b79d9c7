package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/services"
)

// RevokeRequest selects the (person, template) pair to revoke.
type RevokeRequest struct {
	PersonID   uuid.UUID `json:"personId"`
	TemplateID uuid.UUID `json:"templateId"`
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := s.stats.GetAdminStats(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "cannot load stats")
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}

func (s *Server) revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RevokeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PersonID == uuid.Nil || req.TemplateID == uuid.Nil {
		writeError(ctx, w, http.StatusBadRequest, "personId and templateId are required")
		return
	}

	if err := s.revocation.Revoke(ctx, req.PersonID, req.TemplateID); err != nil {
		switch {
		case errors.Is(err, services.ErrNoEligibility):
			writeError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrUpstreamRevocation):
			writeError(ctx, w, http.StatusBadGateway, err.Error())
		case errors.Is(err, services.ErrPartialRevocation):
			// Upstream is already revoked. The caller must retry until the
			// local transaction lands.
			writeError(ctx, w, http.StatusInternalServerError, err.Error())
		default:
			writeError(ctx, w, http.StatusInternalServerError, "cannot revoke")
		}
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "revoked"})
}
