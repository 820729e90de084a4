package selection

import (
	"sort"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/logger"
)

// DefaultTopN is the number of picks per asset class
const DefaultTopN = 3

// Ranker implements the per-class Top N selection
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// TopN returns the n records with the largest ranking value, descending.
// Ties keep their input order; n larger than the input returns every record
// and n <= 0 returns none. The input slice is never modified.
func (r *Ranker) TopN(records []contracts.AssetRecord, n int) []contracts.AssetRecord {
	if n <= 0 || len(records) == 0 {
		return []contracts.AssetRecord{}
	}

	ranked := make([]contracts.AssetRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankingValue > ranked[j].RankingValue
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}

	r.logger.WithFields(map[string]interface{}{
		"class":      ranked[0].Class,
		"candidates": len(records),
		"selected":   len(ranked),
		"top_label":  ranked[0].Label,
		"top_value":  ranked[0].RankingValue,
	}).Debug("Ranking completed")

	return ranked
}
