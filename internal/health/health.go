package health

import (
	"context"

	goRedis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/JunMin765677/wallet-server/internal/redis"
)

const (
	cache = "cache"
	db    = "db"
)

// Ping interface
type Ping interface {
	Ping(ctx context.Context) error
}

// Status struct
type Status struct {
	pingers map[string]Ping
}

// RedisPinger adapts a redis client to the Ping interface.
type RedisPinger struct {
	Client *goRedis.Client
}

// Ping returns an error if redis is not reachable.
func (p RedisPinger) Ping(ctx context.Context) error {
	return redis.Status(ctx, p.Client)
}

// New returns a Health instance
func New(pingers ...Ping) *Status {
	m := make(map[string]Ping)

	for _, p := range pingers {
		switch t := p.(type) {
		case *pgxpool.Pool:
			m[db] = t
		case RedisPinger:
			m[cache] = t
		}
	}

	return &Status{m}
}

// Status returns whether each monitored resource is active or not
func (h *Status) Status(ctx context.Context) map[string]bool {
	m := make(map[string]bool)

	for key, val := range h.pingers {
		m[key] = true
		if err := val.Ping(ctx); err != nil {
			m[key] = false
		}
	}

	return m
}
