package ports

import (
	"context"

	"github.com/google/uuid"
)

// SessionRepository maps opaque acting-person tokens to person ids. It stands
// in for the cookie session of the original flow: the issuance surface needs
// to know which simulated person is currently acting, nothing more.
type SessionRepository interface {
	Set(ctx context.Context, token string, personID uuid.UUID) error
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}
