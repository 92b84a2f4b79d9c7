package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type actingPersonKey struct{}

// actingPerson resolves the opaque bearer token into the acting person id and
// stores it on the request context. Requests without a live session get 401.
func (s *Server) actingPerson(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(r.Context(), w, http.StatusUnauthorized, "missing session token")
			return
		}
		personID, err := s.sessions.Get(r.Context(), token)
		if err != nil {
			writeError(r.Context(), w, http.StatusUnauthorized, "invalid or expired session token")
			return
		}
		ctx := context.WithValue(r.Context(), actingPersonKey{}, personID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actingPersonFromContext(ctx context.Context) (uuid.UUID, bool) {
	personID, found := ctx.Value(actingPersonKey{}).(uuid.UUID)
	return personID, found
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
