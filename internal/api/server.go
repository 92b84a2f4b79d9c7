package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/health"
)

// Server wires the broker services into the HTTP surface.
type Server struct {
	conn         db.Querier
	health       *health.Status
	persons      ports.PersonRepository
	sessions     ports.SessionRepository
	issuance     ports.IssuanceService
	verification ports.VerificationService
	revocation   ports.RevocationService
	stats        ports.StatsRepository
}

// NewServer - Constructor
func NewServer(conn db.Querier, healthStatus *health.Status, persons ports.PersonRepository, sessions ports.SessionRepository, issuance ports.IssuanceService, verification ports.VerificationService, revocation ports.RevocationService, stats ports.StatsRepository) *Server {
	return &Server{
		conn:         conn,
		health:       healthStatus,
		persons:      persons,
		sessions:     sessions,
		issuance:     issuance,
		verification: verification,
		revocation:   revocation,
		stats:        stats,
	}
}

// Routes registers every route on the mux.
func (s *Server) Routes(mux *chi.Mux) {
	mux.Get("/status", s.healthStatus)
	mux.Post("/v1/session", s.createSession)
	mux.Delete("/v1/session", s.deleteSession)

	mux.Route("/v1/issuance", func(r chi.Router) {
		r.Use(s.actingPerson)
		r.Get("/eligibilities", s.listEligibilities)
		r.Post("/requests", s.startIssuance)
		r.Get("/requests/{transactionID}", s.issuanceStatus)
	})

	mux.Route("/v1/verification", func(r chi.Router) {
		r.Post("/requests", s.startVerification)
		r.Get("/requests/{transactionID}", s.verificationStatus)
		r.Post("/batch-sessions", s.startBatch)
		r.Get("/batch-sessions/{sessionUUID}", s.batchStatus)
		r.Get("/batch-sessions/{sessionUUID}/redirect", s.batchRedirect)
	})

	mux.Route("/v1/admin", func(r chi.Router) {
		r.Get("/stats", s.adminStats)
		r.Post("/revocations", s.revoke)
	})
}

func (s *Server) healthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.health.Status(r.Context()))
}
