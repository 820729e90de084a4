package catalogue

import (
	"context"
	"fmt"

	"github.com/wonny/investsim/internal/contracts"
)

// Static serves products from an in-memory catalogue file
// ⭐ SSOT: 고정 상품 카탈로그 (YAML 또는 기본값)
type Static struct {
	file *File
}

// NewStatic wraps a validated catalogue file
func NewStatic(f *File) *Static {
	return &Static{file: f}
}

// NewDefault serves the built-in products
func NewDefault() *Static {
	return NewStatic(Default())
}

// File returns the underlying catalogue document
func (s *Static) File() *File {
	return s.file
}

// Products returns the catalogue entries of a rate-bearing class
func (s *Static) Products(_ context.Context, class contracts.AssetClass) ([]contracts.Product, error) {
	if class.RateKind() != contracts.RatePeriodic {
		return nil, fmt.Errorf("class %s has no catalogue: %w", class, contracts.ErrInvalidCatalogue)
	}
	return s.file.Products(class), nil
}
