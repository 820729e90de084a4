package render

import (
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/wonny/investsim/internal/contracts"
)

var hundred = decimal.NewFromInt(100)

// FormatBRL renders a money amount with two decimals, e.g. "R$ 83.33"
func FormatBRL(v float64) string {
	return "R$ " + decimal.NewFromFloat(v).StringFixed(2)
}

// FormatMonthlyRate renders a monthly fraction as a percentage, e.g. "12.0% a.m."
func FormatMonthlyRate(r float64) string {
	return decimal.NewFromFloat(r).Mul(hundred).StringFixed(1) + "% a.m."
}

// FormatRankingValue renders the ranking key the way its class is read
func FormatRankingValue(e contracts.PortfolioEntry) string {
	if e.RateKind == contracts.RatePeriodic {
		return FormatMonthlyRate(e.RankingValue)
	}
	return FormatBRL(e.RankingValue)
}

// DisplayLabel capitalises crypto ids ("bitcoin" → "Bitcoin"); other labels pass through
func DisplayLabel(e contracts.PortfolioEntry) string {
	if e.Class != contracts.ClassCrypto || e.Label == "" {
		return e.Label
	}
	runes := []rune(e.Label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// SectionTitle returns e.g. "Top 3 Ações"
func SectionTitle(class contracts.AssetClass, topN int) string {
	return fmt.Sprintf("Top %d %s", topN, class.DisplayName())
}
