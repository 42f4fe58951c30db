package service

import (
	"fmt"

	"github.com/diego12655/cv-analyzer-pro/internal/store"
	"github.com/diego12655/cv-analyzer-pro/internal/util"
)

// CodeService handles administrative generation of access codes.
type CodeService struct {
	Codes *store.CodeStore
}

func NewCodeService(codes *store.CodeStore) *CodeService {
	return &CodeService{Codes: codes}
}

const (
	maxBatchSize   = 100
	maxCodeCredits = 1000
)

// GenerateCodes creates quantity fresh codes, each granting credits.
// A collision with an existing code retries with a new random one.
func (s *CodeService) GenerateCodes(quantity, credits int) ([]string, error) {
	if quantity < 1 || quantity > maxBatchSize {
		return nil, fmt.Errorf("quantity must be 1-%d, got %d", maxBatchSize, quantity)
	}
	if credits < 0 || credits > maxCodeCredits {
		return nil, fmt.Errorf("credits must be 0-%d, got %d", maxCodeCredits, credits)
	}

	codes := make([]string, 0, quantity)
	for len(codes) < quantity {
		code, err := util.NewAccessCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		if _, err := s.Codes.Create(nil, code, credits); err != nil {
			if store.IsDuplicateKey(err) {
				continue
			}
			return nil, fmt.Errorf("create code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
