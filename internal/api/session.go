package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/repositories"
)

// CreateSessionRequest is the acting person selection body.
type CreateSessionRequest struct {
	PersonID uuid.UUID `json:"personId"`
}

// CreateSessionResponse carries the opaque token of the minted session.
type CreateSessionResponse struct {
	Token    string    `json:"token"`
	PersonID uuid.UUID `json:"personId"`
}

// createSession mints an opaque acting person token. The simulation has no
// real authentication: picking a person is the login.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PersonID == uuid.Nil {
		writeError(ctx, w, http.StatusBadRequest, "personId is required")
		return
	}
	if _, err := s.persons.GetByID(ctx, s.conn, req.PersonID); err != nil {
		if errors.Is(err, repositories.ErrPersonDoesNotExist) {
			writeError(ctx, w, http.StatusNotFound, "person not found")
			return
		}
		writeError(ctx, w, http.StatusInternalServerError, "cannot load person")
		return
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, token, req.PersonID); err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "cannot store session")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, CreateSessionResponse{Token: token, PersonID: req.PersonID})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := bearerToken(r)
	if token == "" {
		writeError(ctx, w, http.StatusUnauthorized, "missing session token")
		return
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "cannot delete session")
		return
	}
	writeJSON(ctx, w, http.StatusOK, nil)
}
