package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// IssuedVCInMemory is an issued vc repository for tests. It borrows the
// template repository to resolve display data the SQL version gets via a join.
type IssuedVCInMemory struct {
	mu        sync.RWMutex
	vcs       map[uuid.UUID]domain.IssuedVC
	templates *TemplateInMemory
}

// NewIssuedVCInMemory - Constructor
func NewIssuedVCInMemory(templates *TemplateInMemory) *IssuedVCInMemory {
	return &IssuedVCInMemory{
		vcs:       make(map[uuid.UUID]domain.IssuedVC),
		templates: templates,
	}
}

// Save implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) Save(_ context.Context, _ db.Querier, vc *domain.IssuedVC) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vcs[vc.ID] = *vc
	return nil
}

// GetByID implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) GetByID(_ context.Context, _ db.Querier, id uuid.UUID) (*domain.IssuedVC, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	vc, found := i.vcs[id]
	if !found {
		return nil, ErrIssuedVCDoesNotExist
	}
	return &vc, nil
}

// GetLiveByPair implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) GetLiveByPair(_ context.Context, _ db.Querier, personID, templateID uuid.UUID) ([]*domain.IssuedVC, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*domain.IssuedVC, 0)
	for _, vc := range i.vcs {
		if vc.PersonID == personID && vc.TemplateID == templateID && vc.Status == domain.IssuedVCStatusIssued && vc.CID != nil {
			v := vc
			out = append(out, &v)
		}
	}
	return out, nil
}

// MarkRevokedByPair implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) MarkRevokedByPair(_ context.Context, _ db.Querier, personID, templateID uuid.UUID) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var changed int64
	for id, vc := range i.vcs {
		if vc.PersonID == personID && vc.TemplateID == templateID && vc.Status != domain.IssuedVCStatusRevoked {
			vc.Status = domain.IssuedVCStatusRevoked
			i.vcs[id] = vc
			changed++
		}
	}
	return changed, nil
}

// SetClaimed implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) SetClaimed(_ context.Context, _ db.Querier, id uuid.UUID, cid string, issuedAt time.Time) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	vc, found := i.vcs[id]
	if !found || vc.Status != domain.IssuedVCStatusIssuing {
		return ErrIssuedVCDoesNotExist
	}
	vc.Status = domain.IssuedVCStatusIssued
	vc.CID = &cid
	vc.IssuedAt = &issuedAt
	i.vcs[id] = vc
	return nil
}

// SetExpired implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) SetExpired(_ context.Context, _ db.Querier, id uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	vc, found := i.vcs[id]
	if !found || vc.Status != domain.IssuedVCStatusIssuing {
		return ErrIssuedVCDoesNotExist
	}
	vc.Status = domain.IssuedVCStatusExpired
	i.vcs[id] = vc
	return nil
}

// HasIssued implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) HasIssued(_ context.Context, _ db.Querier, personID, templateID uuid.UUID) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, vc := range i.vcs {
		if vc.PersonID == personID && vc.TemplateID == templateID && vc.Status == domain.IssuedVCStatusIssued {
			return true, nil
		}
	}
	return false, nil
}

// GetVerifiedCredentials implements ports.IssuedVCRepository
func (i *IssuedVCInMemory) GetVerifiedCredentials(ctx context.Context, conn db.Querier, personID uuid.UUID) ([]domain.VerifiedCredential, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]domain.VerifiedCredential, 0)
	for _, vc := range i.vcs {
		if vc.PersonID != personID || vc.Status != domain.IssuedVCStatusIssued {
			continue
		}
		template, err := i.templates.GetByID(ctx, conn, vc.TemplateID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.VerifiedCredential{
			TemplateName: template.Name,
			BenefitLevel: vc.BenefitLevel,
			CardArtURL:   template.CardArtURL,
			CID:          vc.CID,
		})
	}
	return out, nil
}
