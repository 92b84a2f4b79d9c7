package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// VerificationLogInMemory is a verification log repository for tests
type VerificationLogInMemory struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]domain.VerificationLog
}

// NewVerificationLogInMemory - Constructor
func NewVerificationLogInMemory() *VerificationLogInMemory {
	return &VerificationLogInMemory{logs: make(map[uuid.UUID]domain.VerificationLog)}
}

// Save implements ports.VerificationLogRepository
func (r *VerificationLogInMemory) Save(_ context.Context, _ db.Querier, log *domain.VerificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.ID] = *log
	return nil
}

// GetByTransactionID implements ports.VerificationLogRepository
func (r *VerificationLogInMemory) GetByTransactionID(_ context.Context, _ db.Querier, transactionID string) (*domain.VerificationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, log := range r.logs {
		if log.TransactionID == transactionID {
			out := log
			return &out, nil
		}
	}
	return nil, ErrVerificationLogDoesNotExist
}

// GetPendingBySession implements ports.VerificationLogRepository
func (r *VerificationLogInMemory) GetPendingBySession(_ context.Context, _ db.Querier, sessionID uuid.UUID) ([]*domain.VerificationLog, error) {
	return r.getBySession(sessionID, true), nil
}

// GetAllBySession implements ports.VerificationLogRepository
func (r *VerificationLogInMemory) GetAllBySession(_ context.Context, _ db.Querier, sessionID uuid.UUID) ([]*domain.VerificationLog, error) {
	return r.getBySession(sessionID, false), nil
}

func (r *VerificationLogInMemory) getBySession(sessionID uuid.UUID, pendingOnly bool) []*domain.VerificationLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.VerificationLog, 0)
	for _, log := range r.logs {
		if log.BatchSessionID == nil || *log.BatchSessionID != sessionID {
			continue
		}
		if pendingOnly && log.Status != domain.VerificationStatusInitiated {
			continue
		}
		l := log
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// SetTerminal implements ports.VerificationLogRepository
func (r *VerificationLogInMemory) SetTerminal(_ context.Context, _ db.Querier, log *domain.VerificationLog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, found := r.logs[log.ID]
	if !found || stored.Status != domain.VerificationStatusInitiated {
		return false, nil
	}
	stored.Status = log.Status
	stored.VerifiedPersonID = log.VerifiedPersonID
	stored.ReturnedData = log.ReturnedData
	stored.ResultDescription = log.ResultDescription
	r.logs[log.ID] = stored
	return true, nil
}

// BatchSessionInMemory is a batch verification session repository for tests
type BatchSessionInMemory struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.BatchVerificationSession
}

// NewBatchSessionInMemory - Constructor
func NewBatchSessionInMemory() *BatchSessionInMemory {
	return &BatchSessionInMemory{sessions: make(map[uuid.UUID]domain.BatchVerificationSession)}
}

// Save implements ports.BatchSessionRepository
func (r *BatchSessionInMemory) Save(_ context.Context, _ db.Querier, session *domain.BatchVerificationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

// GetByUUID implements ports.BatchSessionRepository
func (r *BatchSessionInMemory) GetByUUID(_ context.Context, _ db.Querier, sessionUUID string) (*domain.BatchVerificationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.sessions {
		if session.UUID == sessionUUID {
			out := session
			return &out, nil
		}
	}
	return nil, ErrBatchSessionDoesNotExist
}

// MarkExpired implements ports.BatchSessionRepository
func (r *BatchSessionInMemory) MarkExpired(_ context.Context, _ db.Querier, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, found := r.sessions[id]
	if !found || session.Status != domain.BatchSessionStatusActive {
		return false, nil
	}
	session.Status = domain.BatchSessionStatusExpired
	r.sessions[id] = session
	return true, nil
}
