package services

import (
	"github.com/JunMin765677/wallet-server/internal/core/domain"
	"github.com/JunMin765677/wallet-server/internal/core/ports"
	"github.com/JunMin765677/wallet-server/pkg/rand"
)

type randomBenefitPicker struct{}

// NewRandomBenefitPicker returns the default benefit picker. The simulation
// assigns one of the template's candidate levels uniformly at random.
func NewRandomBenefitPicker() ports.BenefitPicker {
	return &randomBenefitPicker{}
}

func (p randomBenefitPicker) Pick(levels []string) (string, error) {
	if len(levels) == 0 {
		return domain.BenefitLevelNA, nil
	}
	n, err := rand.Intn(len(levels))
	if err != nil {
		return "", err
	}
	return levels[n], nil
}
