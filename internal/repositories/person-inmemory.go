package repositories

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/db"
)

// PersonInMemory is a person repository for tests
type PersonInMemory struct {
	mu      sync.RWMutex
	persons map[uuid.UUID]domain.Person
}

// NewPersonInMemory - Constructor
func NewPersonInMemory() *PersonInMemory {
	return &PersonInMemory{persons: make(map[uuid.UUID]domain.Person)}
}

// Add seeds a person
func (p *PersonInMemory) Add(person domain.Person) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persons[person.ID] = person
}

// GetByID implements ports.PersonRepository
func (p *PersonInMemory) GetByID(_ context.Context, _ db.Querier, id uuid.UUID) (*domain.Person, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	person, found := p.persons[id]
	if !found {
		return nil, ErrPersonDoesNotExist
	}
	return &person, nil
}

// GetByNationalID implements ports.PersonRepository
func (p *PersonInMemory) GetByNationalID(_ context.Context, _ db.Querier, nationalID string) (*domain.Person, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, person := range p.persons {
		if person.NationalID == nationalID {
			out := person
			return &out, nil
		}
	}
	return nil, ErrPersonDoesNotExist
}
