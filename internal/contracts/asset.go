package contracts

import (
	"fmt"
	"strings"
)

// AssetClass identifies one of the four ranked asset families
// ⭐ SSOT: 자산군 정의 및 포트폴리오 순서
type AssetClass string

const (
	ClassEquity      AssetClass = "EQUITY"
	ClassCrypto      AssetClass = "CRYPTO"
	ClassFixedIncome AssetClass = "FIXED_INCOME"
	ClassFund        AssetClass = "FUND"
)

// AllClasses returns the asset classes in portfolio order
func AllClasses() []AssetClass {
	return []AssetClass{ClassEquity, ClassCrypto, ClassFixedIncome, ClassFund}
}

// String returns the class name
func (c AssetClass) String() string {
	return string(c)
}

// DisplayName returns the section title used by the report
func (c AssetClass) DisplayName() string {
	switch c {
	case ClassEquity:
		return "Ações"
	case ClassCrypto:
		return "Criptomoedas"
	case ClassFixedIncome:
		return "Renda Fixa"
	case ClassFund:
		return "Fundos"
	default:
		return "Desconhecido"
	}
}

// RateKind returns how the class ranking value drives growth
func (c AssetClass) RateKind() RateKind {
	switch c {
	case ClassFixedIncome, ClassFund:
		return RatePeriodic
	default:
		return RatePriceOnly
	}
}

// IsValid reports whether c is one of the known classes
func (c AssetClass) IsValid() bool {
	for _, known := range AllClasses() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseAssetClass accepts the canonical name case-insensitively
func ParseAssetClass(s string) (AssetClass, error) {
	c := AssetClass(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown asset class %q", s)
	}
	return c, nil
}

// RateKind tags how an AssetRecord's ranking value is interpreted
type RateKind string

const (
	// RatePriceOnly: ranking value is a price; growth uses a fixed nominal rate
	RatePriceOnly RateKind = "PRICE_ONLY"

	// RatePeriodic: ranking value is a stated monthly rate
	RatePeriodic RateKind = "PERIODIC_RATE"
)

// String returns the rate kind name
func (k RateKind) String() string {
	return string(k)
}

// AssetRecord is the uniform, rankable form of every source shape
// ⭐ SSOT: Normalizer → Ranker → Orchestrator 전달 타입
type AssetRecord struct {
	Label        string     `json:"label"`
	Class        AssetClass `json:"class"`
	RankingValue float64    `json:"ranking_value"` // price or monthly rate
	RateKind     RateKind   `json:"rate_kind"`
}

// PriceHistory is a closing-price series for one symbol, oldest first
type PriceHistory struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

// SpotRates is a spot quote mapping plus the ids that were requested.
// Requested fixes the output order; map iteration order is never used.
type SpotRates struct {
	Requested []string           `json:"requested"`
	Prices    map[string]float64 `json:"prices"`
}

// Product is a static catalogue entry with a stated monthly rate
type Product struct {
	Name        string     `json:"name" yaml:"name"`
	Class       AssetClass `json:"class" yaml:"class"`
	MonthlyRate float64    `json:"monthly_rate" yaml:"monthly_rate"`
}

// Datasets holds the four raw class-specific inputs of one run
type Datasets struct {
	Equities    []PriceHistory `json:"equities"`
	Crypto      SpotRates      `json:"crypto"`
	FixedIncome []Product      `json:"fixed_income"`
	Funds       []Product      `json:"funds"`
}
