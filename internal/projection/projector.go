package projection

import (
	"fmt"
	"math"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/logger"
)

const (
	// PriceOnlyDailyRate is the nominal growth applied to price-ranked assets.
	// The asset's price only ranks it; it never drives growth.
	PriceOnlyDailyRate = 0.001

	// DaysPerMonth converts a stated monthly rate with a flat division
	DaysPerMonth = 30
)

// Projector builds compounding growth series over the fixed horizon
// ⭐ SSOT: 성장 투영 로직은 여기서만
type Projector struct {
	logger *logger.Logger
}

// NewProjector creates a new projector
func NewProjector(logger *logger.Logger) *Projector {
	return &Projector{logger: logger}
}

// DailyRate applies the class rate policy:
// PRICE_ONLY → PriceOnlyDailyRate, PERIODIC_RATE → monthlyRate / 30.
func DailyRate(kind contracts.RateKind, rankingValue float64) (float64, error) {
	switch kind {
	case contracts.RatePriceOnly:
		return PriceOnlyDailyRate, nil
	case contracts.RatePeriodic:
		if !isFinite(rankingValue) {
			return 0, fmt.Errorf("monthly rate %v: %w", rankingValue, contracts.ErrInvalidRateInput)
		}
		return rankingValue / DaysPerMonth, nil
	default:
		return 0, fmt.Errorf("rate kind %q: %w", kind, contracts.ErrInvalidRateInput)
	}
}

// Project returns value(i) = amount * (1 + dailyRate)^i for i = 1..30
func (p *Projector) Project(alloc contracts.Allocation, kind contracts.RateKind, rankingValue float64) (contracts.GrowthSeries, error) {
	if !isFinite(alloc.Amount) {
		return contracts.GrowthSeries{}, fmt.Errorf("%s amount %v: %w", alloc.Label, alloc.Amount, contracts.ErrInvalidRateInput)
	}

	rate, err := DailyRate(kind, rankingValue)
	if err != nil {
		return contracts.GrowthSeries{}, fmt.Errorf("%s: %w", alloc.Label, err)
	}

	values := make([]float64, contracts.HorizonDays)
	for i := range values {
		values[i] = alloc.Amount * math.Pow(1+rate, float64(i+1))
	}

	p.logger.WithFields(map[string]interface{}{
		"label":      alloc.Label,
		"daily_rate": rate,
		"final":      values[len(values)-1],
	}).Debug("Projection completed")

	return contracts.GrowthSeries{
		Label:     alloc.Label,
		DailyRate: rate,
		Values:    values,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
