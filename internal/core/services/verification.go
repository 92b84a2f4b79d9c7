package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/common"
	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/log"
	"github.com/JunMin765677/wallet-server/internal/repositories"
)

var (
	// ErrVerificationNotFound no verification transaction with that id
	ErrVerificationNotFound = errors.New("verification transaction not found")
	// ErrVerifierSandbox the verifier sandbox answered with a hard error
	ErrVerifierSandbox = errors.New("verifier sandbox request failed")
)

// personalIDClaimName is the disclosed claim the broker resolves a local
// person with.
const personalIDClaimName = "nationalId"

// scanPendingDescription annotates batch members that were scanned but have
// not reached a terminal state yet.
const scanPendingDescription = "scanned, not yet complete"

type verification struct {
	conn          db.Querier
	persons       ports.PersonRepository
	issuedVCs     ports.IssuedVCRepository
	logs          ports.VerificationLogRepository
	sessions      ports.BatchSessionRepository
	verifier      ports.VerifierGateway
	window        time.Duration
	sessionWindow time.Duration
	serverURL     string
}

// NewVerification creates the verification service
func NewVerification(conn db.Querier, persons ports.PersonRepository, issuedVCs ports.IssuedVCRepository, logs ports.VerificationLogRepository, sessions ports.BatchSessionRepository, verifier ports.VerifierGateway, window, sessionWindow time.Duration, serverURL string) ports.VerificationService {
	return &verification{
		conn:          conn,
		persons:       persons,
		issuedVCs:     issuedVCs,
		logs:          logs,
		sessions:      sessions,
		verifier:      verifier,
		window:        window,
		sessionWindow: sessionWindow,
		serverURL:     serverURL,
	}
}

// Start begins a single verification attempt. The sandbox is asked for the
// QR first so a sandbox failure leaves no local state behind.
func (s *verification) Start(ctx context.Context) (*ports.StartVerificationResponse, error) {
	transactionID := uuid.NewString()
	qr, err := s.verifier.CreateQRCode(ctx, transactionID)
	if err != nil {
		log.Error(ctx, "verifier sandbox qrcode request failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrVerifierSandbox, err)
	}

	now := time.Now().UTC()
	record := domain.NewVerificationLog(transactionID, now.Add(s.window), nil)
	if err := s.logs.Save(ctx, s.conn, record); err != nil {
		return nil, err
	}
	return &ports.StartVerificationResponse{
		TransactionID: transactionID,
		QRCodeImage:   qr.QRCodeImage,
		AuthURI:       qr.AuthURI,
		ExpiresAt:     record.ExpiresAt,
	}, nil
}

// Status polls a single verification transaction.
func (s *verification) Status(ctx context.Context, transactionID string) (*ports.VerificationOutcome, error) {
	record, err := s.logs.GetByTransactionID(ctx, s.conn, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrVerificationLogDoesNotExist) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return s.resolve(ctx, record, false)
}

// resolve drives one verification log towards a terminal state. Terminal
// logs are answered from storage without touching the sandbox. In batch mode
// a hard sandbox error fails the log instead of failing the whole poll, so
// one bad member cannot take down a session summary.
func (s *verification) resolve(ctx context.Context, record *domain.VerificationLog, inBatch bool) (*ports.VerificationOutcome, error) {
	if record.IsTerminal() {
		return s.outcome(ctx, record)
	}

	now := time.Now().UTC()
	if record.ExpiredByClock(now) {
		record.Status = domain.VerificationStatusExpired
		record.ResultDescription = common.ToPointer("verification window lapsed before completion")
		return s.setTerminal(ctx, record)
	}

	result, err := s.verifier.FetchResult(ctx, record.TransactionID)
	if errors.Is(err, ports.ErrResultPending) {
		return s.outcome(ctx, record)
	}
	if err != nil {
		if !inBatch {
			log.Error(ctx, "verifier sandbox result poll failed", "err", err, "transactionID", record.TransactionID)
			return nil, fmt.Errorf("%w: %v", ErrVerifierSandbox, err)
		}
		record.Status = domain.VerificationStatusFailed
		record.ResultDescription = common.ToPointer("verifier sandbox error: " + err.Error())
		return s.setTerminal(ctx, record)
	}

	record.ReturnedData = result.Raw
	if !result.VerifyResult {
		record.Status = domain.VerificationStatusFailed
		if result.Description != "" {
			record.ResultDescription = common.ToPointer(result.Description)
		}
		return s.setTerminal(ctx, record)
	}

	nationalID := claimValue(result.ClaimSets, personalIDClaimName)
	if nationalID == "" {
		record.Status = domain.VerificationStatusErrorMissingUUID
		record.ResultDescription = common.ToPointer("presentation carries no personal id claim")
		return s.setTerminal(ctx, record)
	}

	// Person resolution and the terminal write happen in one transaction so
	// a success row always points at the person that matched at that instant.
	if err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		person, err := s.persons.GetByNationalID(ctx, tx, nationalID)
		switch {
		case errors.Is(err, repositories.ErrPersonDoesNotExist):
			record.Status = domain.VerificationStatusErrorMissingUUID
			record.ResultDescription = common.ToPointer("no local person matches the presented personal id")
		case err != nil:
			return err
		default:
			record.Status = domain.VerificationStatusSuccess
			record.VerifiedPersonID = &person.ID
		}
		_, err = s.logs.SetTerminal(ctx, tx, record)
		return err
	}); err != nil {
		return nil, err
	}
	return s.outcome(ctx, record)
}

// setTerminal persists the terminal fields of record. A lost race against a
// concurrent poller is benign: the row was terminalized once either way, so
// the stored state is re-read and reported.
func (s *verification) setTerminal(ctx context.Context, record *domain.VerificationLog) (*ports.VerificationOutcome, error) {
	changed, err := s.logs.SetTerminal(ctx, s.conn, record)
	if err != nil {
		return nil, err
	}
	if !changed {
		stored, err := s.logs.GetByTransactionID(ctx, s.conn, record.TransactionID)
		if err != nil {
			return nil, err
		}
		record = stored
	}
	return s.outcome(ctx, record)
}

func (s *verification) outcome(ctx context.Context, record *domain.VerificationLog) (*ports.VerificationOutcome, error) {
	out := ports.VerificationOutcome{
		TransactionID: record.TransactionID,
		Status:        record.Status,
		Description:   record.ResultDescription,
		ExpiresAt:     record.ExpiresAt,
	}
	if record.Status == domain.VerificationStatusInitiated && record.BatchSessionID != nil {
		out.Description = common.ToPointer(scanPendingDescription)
	}
	if record.Status == domain.VerificationStatusSuccess {
		payload, err := s.successPayload(ctx, record)
		if err != nil {
			return nil, err
		}
		out.Payload = payload
	}
	return &out, nil
}

// successPayload assembles the rich success payload. A success row whose
// person was deleted afterwards is reported as orphaned: the raw sandbox
// payload survives, the identity blocks do not.
func (s *verification) successPayload(ctx context.Context, record *domain.VerificationLog) (*ports.VerificationSuccessPayload, error) {
	if record.VerifiedPersonID == nil {
		return &ports.VerificationSuccessPayload{Raw: record.ReturnedData, Orphaned: true}, nil
	}
	person, err := s.persons.GetByID(ctx, s.conn, *record.VerifiedPersonID)
	if err != nil {
		if errors.Is(err, repositories.ErrPersonDoesNotExist) {
			return &ports.VerificationSuccessPayload{Raw: record.ReturnedData, Orphaned: true}, nil
		}
		return nil, err
	}
	credentials, err := s.issuedVCs.GetVerifiedCredentials(ctx, s.conn, person.ID)
	if err != nil {
		return nil, err
	}
	contact := person.EmergencyContact
	return &ports.VerificationSuccessPayload{
		PersonName:          person.Name,
		NationalID:          person.NationalID,
		EmergencyContact:    &contact,
		ReviewingAuthority:  person.ReviewingAuthority,
		ReviewerName:        person.ReviewerName,
		VerifiedCredentials: credentials,
		Raw:                 record.ReturnedData,
	}, nil
}

// claimValue returns the first value of the named claim across the presented
// claim sets, or empty when no credential disclosed it.
func claimValue(sets []ports.VerificationClaimSet, name string) string {
	for _, set := range sets {
		for _, claim := range set.Claims {
			if claim.Name == name && claim.Value != "" {
				return claim.Value
			}
		}
	}
	return ""
}
