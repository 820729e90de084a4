// Package normalize turns the raw source shapes of each asset class into
// uniform contracts.AssetRecord values. No unit conversion happens here.
package normalize

import (
	"fmt"
	"math"

	"github.com/wonny/investsim/internal/contracts"
)

// FromPriceHistories ranks each symbol by its most recent close.
// An empty history is ErrMissingPriceData.
func FromPriceHistories(class contracts.AssetClass, histories []contracts.PriceHistory) ([]contracts.AssetRecord, error) {
	records := make([]contracts.AssetRecord, 0, len(histories))
	for _, h := range histories {
		if len(h.Closes) == 0 {
			return nil, fmt.Errorf("%s: empty price history: %w", h.Symbol, contracts.ErrMissingPriceData)
		}
		last := h.Closes[len(h.Closes)-1]
		if !isFinite(last) {
			return nil, fmt.Errorf("%s: last close %v: %w", h.Symbol, last, contracts.ErrMissingPriceData)
		}
		records = append(records, contracts.AssetRecord{
			Label:        h.Symbol,
			Class:        class,
			RankingValue: last,
			RateKind:     contracts.RatePriceOnly,
		})
	}
	return records, nil
}

// FromSpotRates ranks each requested id by its spot price, in request order.
// A requested id absent from the quote map is ErrMissingPriceData.
func FromSpotRates(class contracts.AssetClass, rates contracts.SpotRates) ([]contracts.AssetRecord, error) {
	records := make([]contracts.AssetRecord, 0, len(rates.Requested))
	seen := make(map[string]bool, len(rates.Requested))
	for _, id := range rates.Requested {
		if seen[id] {
			continue
		}
		seen[id] = true

		price, ok := rates.Prices[id]
		if !ok || !isFinite(price) {
			return nil, fmt.Errorf("%s: no spot price: %w", id, contracts.ErrMissingPriceData)
		}
		records = append(records, contracts.AssetRecord{
			Label:        id,
			Class:        class,
			RankingValue: price,
			RateKind:     contracts.RatePriceOnly,
		})
	}
	return records, nil
}

// FromProducts ranks catalogue products by their stated monthly rate
func FromProducts(class contracts.AssetClass, products []contracts.Product) ([]contracts.AssetRecord, error) {
	records := make([]contracts.AssetRecord, 0, len(products))
	for _, p := range products {
		if err := ValidateProduct(p); err != nil {
			return nil, err
		}
		if p.Class != "" && p.Class != class {
			return nil, fmt.Errorf("%s: class %s listed under %s: %w", p.Name, p.Class, class, contracts.ErrInvalidCatalogue)
		}
		records = append(records, contracts.AssetRecord{
			Label:        p.Name,
			Class:        class,
			RankingValue: p.MonthlyRate,
			RateKind:     contracts.RatePeriodic,
		})
	}
	return records, nil
}

// ValidateProduct enforces the only catalogue invariant: a named product
// with a finite, non-negative rate.
func ValidateProduct(p contracts.Product) error {
	if p.Name == "" {
		return fmt.Errorf("product without name: %w", contracts.ErrInvalidCatalogue)
	}
	if !isFinite(p.MonthlyRate) || p.MonthlyRate < 0 {
		return fmt.Errorf("%s: monthly rate %v: %w", p.Name, p.MonthlyRate, contracts.ErrInvalidCatalogue)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
