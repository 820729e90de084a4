package contracts

import "time"

// HorizonDays is the fixed projection horizon
const HorizonDays = 30

// Allocation is the capital assigned to one selected asset
type Allocation struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// GrowthSeries is the day-indexed compounding projection of one allocation.
// Values[i] is the value at the end of day i+1.
type GrowthSeries struct {
	Label     string    `json:"label"`
	DailyRate float64   `json:"daily_rate"`
	Values    []float64 `json:"values"`
}

// Final returns the value at the end of the horizon
func (g GrowthSeries) Final() float64 {
	if len(g.Values) == 0 {
		return 0
	}
	return g.Values[len(g.Values)-1]
}

// PortfolioEntry is one display-ready row of the simulated portfolio
// ⭐ SSOT: Orchestrator → RenderSink 전달 타입
type PortfolioEntry struct {
	Position     int          `json:"position"` // 1-based rank within its class
	Class        AssetClass   `json:"class"`
	Label        string       `json:"label"`
	RankingValue float64      `json:"ranking_value"`
	RateKind     RateKind     `json:"rate_kind"`
	Allocation   Allocation   `json:"allocation"`
	Series       GrowthSeries `json:"series"`
}

// Report is the complete output of one simulation run
type Report struct {
	RunID        string           `json:"run_id"`
	GeneratedAt  time.Time        `json:"generated_at"`
	TotalCapital float64          `json:"total_capital"`
	TopN         int              `json:"top_n"`
	Entries      []PortfolioEntry `json:"entries"`
}

// Allocations returns the ordered (label, amount) pairs
func (r *Report) Allocations() []Allocation {
	out := make([]Allocation, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Allocation)
	}
	return out
}

// Series returns the ordered growth series
func (r *Report) Series() []GrowthSeries {
	out := make([]GrowthSeries, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Series)
	}
	return out
}

// ByClass returns the entries of one class, in rank order
func (r *Report) ByClass(class AssetClass) []PortfolioEntry {
	var out []PortfolioEntry
	for _, e := range r.Entries {
		if e.Class == class {
			out = append(out, e)
		}
	}
	return out
}

// Invested returns the sum of all allocations
func (r *Report) Invested() float64 {
	total := 0.0
	for _, e := range r.Entries {
		total += e.Allocation.Amount
	}
	return total
}

// ProjectedTotal returns the portfolio value at the end of the horizon
func (r *Report) ProjectedTotal() float64 {
	total := 0.0
	for _, e := range r.Entries {
		total += e.Series.Final()
	}
	return total
}

// DailyTotals returns the summed portfolio value for each horizon day
func (r *Report) DailyTotals() []float64 {
	totals := make([]float64, HorizonDays)
	for _, e := range r.Entries {
		for i, v := range e.Series.Values {
			if i < len(totals) {
				totals[i] += v
			}
		}
	}
	return totals
}
