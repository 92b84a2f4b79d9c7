package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/log"
	"github.com/JunMin765677/wallet-server/internal/repositories"
	"github.com/JunMin765677/wallet-server/pkg/credentials"
)

var (
	// ErrPersonNotFound person not found
	ErrPersonNotFound = errors.New("person not found")
	// ErrTemplateNotFound vc template not found
	ErrTemplateNotFound = errors.New("vc template not found")
	// ErrNoEligibility the person holds no eligibility for the template
	ErrNoEligibility = errors.New("person holds no eligibility for this template")
	// ErrIssuanceNotFound no issuance transaction with that id
	ErrIssuanceNotFound = errors.New("issuance transaction not found")
	// ErrWalletSandbox the wallet sandbox answered with a hard error
	ErrWalletSandbox = errors.New("wallet sandbox request failed")
	// ErrMalformedCredential the wallet sandbox returned a credential token the
	// broker cannot extract a cid from
	ErrMalformedCredential = errors.New("wallet sandbox returned a malformed credential token")
)

type issuance struct {
	conn          db.Querier
	persons       ports.PersonRepository
	templates     ports.TemplateRepository
	eligibilities ports.EligibilityRepository
	issuedVCs     ports.IssuedVCRepository
	logs          ports.IssuanceLogRepository
	wallet        ports.WalletGateway
	picker        ports.BenefitPicker
	claimWindow   time.Duration
}

// NewIssuance creates the issuance service
func NewIssuance(conn db.Querier, persons ports.PersonRepository, templates ports.TemplateRepository, eligibilities ports.EligibilityRepository, issuedVCs ports.IssuedVCRepository, logs ports.IssuanceLogRepository, wallet ports.WalletGateway, picker ports.BenefitPicker, claimWindow time.Duration) ports.IssuanceService {
	return &issuance{
		conn:          conn,
		persons:       persons,
		templates:     templates,
		eligibilities: eligibilities,
		issuedVCs:     issuedVCs,
		logs:          logs,
		wallet:        wallet,
		picker:        picker,
		claimWindow:   claimWindow,
	}
}

// Eligibilities lists the person's eligible templates, annotated with whether
// a credential was already claimed against each.
func (s *issuance) Eligibilities(ctx context.Context, personID uuid.UUID) ([]ports.EligibleTemplate, error) {
	if _, err := s.persons.GetByID(ctx, s.conn, personID); err != nil {
		if errors.Is(err, repositories.ErrPersonDoesNotExist) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	eligibilities, err := s.eligibilities.GetByPersonID(ctx, s.conn, personID)
	if err != nil {
		return nil, err
	}

	out := make([]ports.EligibleTemplate, 0, len(eligibilities))
	for _, eligibility := range eligibilities {
		template, err := s.templates.GetByID(ctx, s.conn, eligibility.TemplateID)
		if err != nil {
			return nil, err
		}
		claimed, err := s.issuedVCs.HasIssued(ctx, s.conn, personID, template.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.EligibleTemplate{Template: *template, Claimed: claimed})
	}
	return out, nil
}

// Start begins an issuance attempt: the wallet sandbox is asked for a claim
// QR first, and only on its success are the local issuing row and audit log
// written, inside one transaction. A sandbox failure therefore leaves no
// orphaned local state.
func (s *issuance) Start(ctx context.Context, personID, templateID uuid.UUID) (*ports.StartIssuanceResponse, error) {
	person, err := s.persons.GetByID(ctx, s.conn, personID)
	if err != nil {
		if errors.Is(err, repositories.ErrPersonDoesNotExist) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	template, err := s.templates.GetByID(ctx, s.conn, templateID)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateDoesNotExist) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	eligible, err := s.eligibilities.Exists(ctx, s.conn, personID, templateID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNoEligibility
	}

	benefitLevel := domain.BenefitLevelNA
	if len(template.BenefitLevels) > 0 {
		benefitLevel, err = s.picker.Pick(template.BenefitLevels)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.claimWindow)
	qr, err := s.wallet.IssueQRCode(ctx, ports.IssueCredentialRequest{
		VCUID:     template.VCUID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Fields: []ports.CredentialField{
			{Name: "name", Value: person.Name},
			{Name: "templateName", Value: template.Name},
			{Name: "benefitLevel", Value: benefitLevel},
		},
	})
	if err != nil {
		log.Error(ctx, "wallet sandbox issuance request failed", "err", err, "template", templateID)
		return nil, fmt.Errorf("%w: %v", ErrWalletSandbox, err)
	}

	vc := domain.NewIssuedVC(personID, templateID, benefitLevel)
	record := domain.NewIssuanceLog(vc.ID, qr.TransactionID, expiresAt)
	if err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		if err := s.issuedVCs.Save(ctx, tx, vc); err != nil {
			return err
		}
		return s.logs.Save(ctx, tx, record)
	}); err != nil {
		return nil, err
	}

	return &ports.StartIssuanceResponse{
		IssuedVcID:    vc.ID,
		TransactionID: qr.TransactionID,
		QRCode:        qr.QRCode,
		DeepLink:      qr.DeepLink,
		BenefitLevel:  benefitLevel,
		ExpiresAt:     expiresAt,
	}, nil
}

// Status polls an issuance transaction. Terminal logs are answered from
// storage without touching the sandbox. An initiated log past its window is
// expired in place; otherwise the sandbox is asked whether the credential was
// claimed, and a claim is committed atomically on both rows.
func (s *issuance) Status(ctx context.Context, transactionID string) (*ports.IssuanceStatus, error) {
	record, err := s.logs.GetByTransactionID(ctx, s.conn, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrIssuanceLogDoesNotExist) {
			return nil, ErrIssuanceNotFound
		}
		return nil, err
	}
	if record.IsTerminal() {
		return s.statusOf(ctx, record)
	}

	now := time.Now().UTC()
	if record.ExpiredByClock(now) {
		if err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
			changed, err := s.logs.MarkExpired(ctx, tx, record.ID)
			if err != nil || !changed {
				return err
			}
			return s.issuedVCs.SetExpired(ctx, tx, record.IssuedVcID)
		}); err != nil {
			return nil, err
		}
		record.Status = domain.IssuanceLogStatusExpired
		return s.statusOf(ctx, record)
	}

	token, err := s.wallet.FetchClaimedCredential(ctx, transactionID)
	if errors.Is(err, ports.ErrClaimPending) {
		return s.statusOf(ctx, record)
	}
	if err != nil {
		log.Error(ctx, "wallet sandbox claim poll failed", "err", err, "transactionID", transactionID)
		return nil, fmt.Errorf("%w: %v", ErrWalletSandbox, err)
	}

	cid, err := credentials.ExtractCID(token)
	if err != nil {
		log.Error(ctx, "cannot extract cid from claimed credential", "err", err, "transactionID", transactionID)
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	if err := s.conn.BeginFunc(ctx, func(tx pgx.Tx) error {
		changed, err := s.logs.MarkUserClaimed(ctx, tx, record.ID, now)
		if err != nil || !changed {
			return err
		}
		return s.issuedVCs.SetClaimed(ctx, tx, record.IssuedVcID, cid, now)
	}); err != nil {
		return nil, err
	}
	record.Status = domain.IssuanceLogStatusUserClaimed
	record.ClaimedAt = &now
	return s.statusOf(ctx, record)
}

func (s *issuance) statusOf(ctx context.Context, record *domain.IssuanceLog) (*ports.IssuanceStatus, error) {
	// The derived status covers a window that lapses mid-poll, between the
	// expiry check and the sandbox answer: the caller sees expired even
	// though the transition is only materialized on the next poll.
	out := ports.IssuanceStatus{
		TransactionID: record.TransactionID,
		Status:        record.DisplayStatus(time.Now().UTC()),
		ExpiresAt:     record.ExpiresAt,
	}
	if record.Status == domain.IssuanceLogStatusUserClaimed {
		vc, err := s.issuedVCs.GetByID(ctx, s.conn, record.IssuedVcID)
		if err != nil {
			return nil, err
		}
		out.CID = vc.CID
	}
	return &out, nil
}
