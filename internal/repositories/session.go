package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/pkg/cache"
)

// ErrSessionDoesNotExist acting person session does not exist or has expired
var ErrSessionDoesNotExist = errors.New("session does not exist")

type cachedSession struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSessionCached returns a cache backed acting person session repository.
// Sessions are ephemeral by nature so they never touch the database.
func NewSessionCached(c cache.Cache, ttl time.Duration) ports.SessionRepository {
	return &cachedSession{cache: c, ttl: ttl}
}

func (s *cachedSession) Set(ctx context.Context, token string, personID uuid.UUID) error {
	return s.cache.Set(ctx, sessionKey(token), personID.String(), s.ttl)
}

func (s *cachedSession) Get(ctx context.Context, token string) (uuid.UUID, error) {
	var raw string
	if !s.cache.Get(ctx, sessionKey(token), &raw) {
		return uuid.Nil, ErrSessionDoesNotExist
	}
	personID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	return personID, nil
}

func (s *cachedSession) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	return "session-" + token
}
