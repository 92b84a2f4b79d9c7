package repositories

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// TemplateInMemory is a vc template repository for tests
type TemplateInMemory struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]domain.VCTemplate
}

// NewTemplateInMemory - Constructor
func NewTemplateInMemory() *TemplateInMemory {
	return &TemplateInMemory{templates: make(map[uuid.UUID]domain.VCTemplate)}
}

// Add seeds a template
func (t *TemplateInMemory) Add(template domain.VCTemplate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.templates[template.ID] = template
}

// GetByID implements ports.TemplateRepository
func (t *TemplateInMemory) GetByID(_ context.Context, _ db.Querier, id uuid.UUID) (*domain.VCTemplate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	template, found := t.templates[id]
	if !found {
		return nil, ErrTemplateDoesNotExist
	}
	return &template, nil
}

// EligibilityInMemory is a person eligibility repository for tests
type EligibilityInMemory struct {
	mu            sync.RWMutex
	eligibilities map[uuid.UUID]domain.PersonEligibility
}

// NewEligibilityInMemory - Constructor
func NewEligibilityInMemory() *EligibilityInMemory {
	return &EligibilityInMemory{eligibilities: make(map[uuid.UUID]domain.PersonEligibility)}
}

// Add seeds an eligibility
func (e *EligibilityInMemory) Add(eligibility domain.PersonEligibility) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eligibilities[eligibility.ID] = eligibility
}

// GetByPersonID implements ports.EligibilityRepository
func (e *EligibilityInMemory) GetByPersonID(_ context.Context, _ db.Querier, personID uuid.UUID) ([]*domain.PersonEligibility, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*domain.PersonEligibility, 0)
	for _, eligibility := range e.eligibilities {
		if eligibility.PersonID == personID {
			pe := eligibility
			out = append(out, &pe)
		}
	}
	return out, nil
}

// Exists implements ports.EligibilityRepository
func (e *EligibilityInMemory) Exists(_ context.Context, _ db.Querier, personID, templateID uuid.UUID) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, eligibility := range e.eligibilities {
		if eligibility.PersonID == personID && eligibility.TemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

// Delete implements ports.EligibilityRepository
func (e *EligibilityInMemory) Delete(_ context.Context, _ db.Querier, personID, templateID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, eligibility := range e.eligibilities {
		if eligibility.PersonID == personID && eligibility.TemplateID == templateID {
			delete(e.eligibilities, id)
			return nil
		}
	}
	return ErrEligibilityDoesNotExist
}
