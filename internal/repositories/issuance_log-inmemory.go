package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// IssuanceLogInMemory is an issuance log repository for tests
type IssuanceLogInMemory struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]domain.IssuanceLog
}

// NewIssuanceLogInMemory - Constructor
func NewIssuanceLogInMemory() *IssuanceLogInMemory {
	return &IssuanceLogInMemory{logs: make(map[uuid.UUID]domain.IssuanceLog)}
}

// Save implements ports.IssuanceLogRepository
func (r *IssuanceLogInMemory) Save(_ context.Context, _ db.Querier, log *domain.IssuanceLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.ID] = *log
	return nil
}

// GetByTransactionID implements ports.IssuanceLogRepository
func (r *IssuanceLogInMemory) GetByTransactionID(_ context.Context, _ db.Querier, transactionID string) (*domain.IssuanceLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, log := range r.logs {
		if log.TransactionID == transactionID {
			out := log
			return &out, nil
		}
	}
	return nil, ErrIssuanceLogDoesNotExist
}

// MarkUserClaimed implements ports.IssuanceLogRepository
func (r *IssuanceLogInMemory) MarkUserClaimed(_ context.Context, _ db.Querier, id uuid.UUID, claimedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, found := r.logs[id]
	if !found || log.Status != domain.IssuanceLogStatusInitiated {
		return false, nil
	}
	log.Status = domain.IssuanceLogStatusUserClaimed
	log.ClaimedAt = &claimedAt
	r.logs[id] = log
	return true, nil
}

// MarkExpired implements ports.IssuanceLogRepository
func (r *IssuanceLogInMemory) MarkExpired(_ context.Context, _ db.Querier, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, found := r.logs[id]
	if !found || log.Status != domain.IssuanceLogStatusInitiated {
		return false, nil
	}
	log.Status = domain.IssuanceLogStatusExpired
	r.logs[id] = log
	return true, nil
}
