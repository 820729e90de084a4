package contracts

import "context"

// PriceSource returns the recent closing prices of a symbol, oldest first.
// "No data" is reported as ErrMissingPriceData, transport or parse failures
// as ErrExternalFetchFailure.
// ⭐ SSOT: 주식 시세 수집 인터페이스
type PriceSource interface {
	History(ctx context.Context, symbol string) ([]float64, error)
}

// SpotRateSource returns id → spot price in the configured quote currency.
// A valid empty result is an empty map with a nil error.
// ⭐ SSOT: 암호화폐 시세 수집 인터페이스
type SpotRateSource interface {
	SpotPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

// Catalogue lists static rate-bearing products of one class
// ⭐ SSOT: 고정 상품 카탈로그 인터페이스
type Catalogue interface {
	Products(ctx context.Context, class AssetClass) ([]Product, error)
}

// RenderSink consumes a finished report (text, chart, JSON ...)
type RenderSink interface {
	Render(ctx context.Context, report *Report) error
}

// Ranker selects the top n records of one class
type Ranker interface {
	TopN(records []AssetRecord, n int) []AssetRecord
}

// Allocator splits capital across selected labels
type Allocator interface {
	Allocate(totalCapital float64, labels []string) ([]Allocation, error)
}

// Projector builds the growth series of one allocation
type Projector interface {
	Project(alloc Allocation, kind RateKind, rankingValue float64) (GrowthSeries, error)
}
