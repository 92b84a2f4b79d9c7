package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/log"
	"github.com/JunMin765677/wallet-server/internal/repositories"
)

var (
	// ErrBatchSessionNotFound no batch session with that uuid
	ErrBatchSessionNotFound = errors.New("batch verification session not found")
	// ErrBatchSessionExpired the session deadline has lapsed
	ErrBatchSessionExpired = errors.New("batch verification session has expired")
	// ErrBatchSessionNotActive the session no longer accepts scans
	ErrBatchSessionNotActive = errors.New("batch verification session is not active")
)

// StartBatch opens a long-lived verification waiting room and returns the
// stable scan URL the venue can print once.
func (s *verification) StartBatch(ctx context.Context) (*ports.StartBatchResponse, error) {
	now := time.Now().UTC()
	session := domain.NewBatchVerificationSession(now.Add(s.sessionWindow))
	if err := s.sessions.Save(ctx, s.conn, session); err != nil {
		return nil, err
	}
	return &ports.StartBatchResponse{
		SessionUUID: session.UUID,
		ScanURL:     fmt.Sprintf("%s/v1/verification/batch-sessions/%s/redirect", s.serverURL, session.UUID),
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// Scan validates the session, mints a one-shot verification log under it and
// returns the external deeplink the scanner must be redirected to. The log's
// own window never outlives the session deadline.
func (s *verification) Scan(ctx context.Context, sessionUUID string) (string, error) {
	session, err := s.session(ctx, sessionUUID)
	if err != nil {
		return "", err
	}
	if session.Status != domain.BatchSessionStatusActive {
		if session.Status == domain.BatchSessionStatusExpired {
			return "", ErrBatchSessionExpired
		}
		return "", ErrBatchSessionNotActive
	}

	transactionID := uuid.NewString()
	qr, err := s.verifier.CreateQRCode(ctx, transactionID)
	if err != nil {
		log.Error(ctx, "verifier sandbox qrcode request failed", "err", err, "session", sessionUUID)
		return "", fmt.Errorf("%w: %v", ErrVerifierSandbox, err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.window)
	if expiresAt.After(session.ExpiresAt) {
		expiresAt = session.ExpiresAt
	}
	record := domain.NewVerificationLog(transactionID, expiresAt, &session.ID)
	if err := s.logs.Save(ctx, s.conn, record); err != nil {
		return "", err
	}
	return qr.AuthURI, nil
}

// BatchStatus polls every pending member of the session concurrently, then
// summarizes all members. Every scanned member appears in the summary,
// pending ones marked as scanned but not yet complete.
func (s *verification) BatchStatus(ctx context.Context, sessionUUID string) (*ports.BatchOutcome, error) {
	session, err := s.session(ctx, sessionUUID)
	if err != nil {
		return nil, err
	}

	pending, err := s.logs.GetPendingBySession(ctx, s.conn, session.ID)
	if err != nil {
		return nil, err
	}

	// All-settled fan-out: every member is driven to its own conclusion even
	// when some of them error out.
	var wg sync.WaitGroup
	for _, record := range pending {
		wg.Add(1)
		go func(record *domain.VerificationLog) {
			defer wg.Done()
			if _, err := s.resolve(ctx, record, true); err != nil {
				log.Error(ctx, "batch member poll failed", "err", err, "transactionID", record.TransactionID)
			}
		}(record)
	}
	wg.Wait()

	all, err := s.logs.GetAllBySession(ctx, s.conn, session.ID)
	if err != nil {
		return nil, err
	}
	results := make([]ports.VerificationOutcome, 0, len(all))
	for _, record := range all {
		outcome, err := s.outcome(ctx, record)
		if err != nil {
			return nil, err
		}
		results = append(results, *outcome)
	}
	return &ports.BatchOutcome{
		SessionUUID: session.UUID,
		Status:      session.Status,
		ExpiresAt:   session.ExpiresAt,
		Results:     results,
	}, nil
}

// session fetches the batch session, lazily expiring it when its deadline has
// lapsed since the last touch.
func (s *verification) session(ctx context.Context, sessionUUID string) (*domain.BatchVerificationSession, error) {
	session, err := s.sessions.GetByUUID(ctx, s.conn, sessionUUID)
	if err != nil {
		if errors.Is(err, repositories.ErrBatchSessionDoesNotExist) {
			return nil, ErrBatchSessionNotFound
		}
		return nil, err
	}
	if session.Status == domain.BatchSessionStatusActive && session.ExpiredByClock(time.Now().UTC()) {
		if _, err := s.sessions.MarkExpired(ctx, s.conn, session.ID); err != nil {
			return nil, err
		}
		session.Status = domain.BatchSessionStatusExpired
	}
	return session, nil
}
