package portfolio

import (
	"fmt"
	"math"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/logger"
)

// Allocator implements strict equal-weight capital allocation
// ⭐ SSOT: 자본 배분 로직은 여기서만
type Allocator struct {
	logger *logger.Logger
}

// NewAllocator creates a new allocator
func NewAllocator(logger *logger.Logger) *Allocator {
	return &Allocator{logger: logger}
}

// Allocate gives every label exactly totalCapital / len(labels), in label order
func (a *Allocator) Allocate(totalCapital float64, labels []string) ([]contracts.Allocation, error) {
	if math.IsNaN(totalCapital) || math.IsInf(totalCapital, 0) || totalCapital <= 0 {
		return nil, fmt.Errorf("capital %v: %w", totalCapital, contracts.ErrInvalidAllocationInput)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no assets selected: %w", contracts.ErrInvalidAllocationInput)
	}

	share := totalCapital / float64(len(labels))

	allocations := make([]contracts.Allocation, len(labels))
	for i, label := range labels {
		allocations[i] = contracts.Allocation{Label: label, Amount: share}
	}

	a.logger.WithFields(map[string]interface{}{
		"capital": totalCapital,
		"assets":  len(labels),
		"share":   share,
	}).Debug("Allocation completed")

	return allocations, nil
}
