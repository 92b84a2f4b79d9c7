package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goRedis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JunMin765677/wallet-server/pkg/cache"
)

func TestSessionCached(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := goRedis.NewClient(&goRedis.Options{Addr: mr.Addr()})
	sessions := NewSessionCached(cache.NewRedisCache(rdb), time.Hour)

	personID := uuid.New()
	token := uuid.NewString()

	_, err := sessions.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionDoesNotExist)

	require.NoError(t, sessions.Set(ctx, token, personID))
	got, err := sessions.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, personID, got)

	require.NoError(t, sessions.Delete(ctx, token))
	_, err = sessions.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionDoesNotExist)
}
