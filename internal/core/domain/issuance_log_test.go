package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JunMin765677/wallet-server/internal/common"
)

func TestIssuanceLogDisplayStatus(t *testing.T) {
	now := time.Now().UTC()

	t.Run("initiated inside window is reported as initiated", func(t *testing.T) {
		l := NewIssuanceLog(uuid.New(), uuid.NewString(), now.Add(10*time.Minute))
		assert.Equal(t, IssuanceLogStatusInitiated, l.DisplayStatus(now))
	})

	t.Run("initiated past window is reported as expired even if not materialized", func(t *testing.T) {
		l := NewIssuanceLog(uuid.New(), uuid.NewString(), now.Add(-time.Second))
		assert.Equal(t, IssuanceLogStatusInitiated, l.Status)
		assert.Equal(t, IssuanceLogStatusExpired, l.DisplayStatus(now))
	})

	t.Run("claimed log keeps its stored status past the window", func(t *testing.T) {
		l := NewIssuanceLog(uuid.New(), uuid.NewString(), now.Add(-time.Minute))
		l.Status = IssuanceLogStatusUserClaimed
		l.ClaimedAt = common.ToPointer(now.Add(-2 * time.Minute))
		assert.Equal(t, IssuanceLogStatusUserClaimed, l.DisplayStatus(now))
	})
}
