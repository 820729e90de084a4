package brain

import (
	"fmt"
	"time"

	"github.com/wonny/investsim/internal/contracts"
)

// StageError tags a core failure with the stage that produced it
type StageError struct {
	Stage contracts.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Simulate is the pure core: the same datasets and config always produce
// the same entries. Classes are ranked independently, concatenated in
// portfolio order (equities, crypto, fixed income, funds), allocated
// equally and projected with each class's rate policy.
func (o *Orchestrator) Simulate(datasets contracts.Datasets, config SimulateConfig) ([]contracts.PortfolioEntry, error) {
	topN := effectiveTopN(config.TopN)

	// Normalize
	start := time.Now()
	records, err := normalizeAll(datasets)
	o.metrics.ObserveStage(contracts.StageNormalize.String(), time.Since(start), err)
	if err != nil {
		return nil, &StageError{Stage: contracts.StageNormalize, Err: err}
	}

	// Rank
	start = time.Now()
	selected := make([]contracts.PortfolioEntry, 0, topN*len(contracts.AllClasses()))
	for _, class := range contracts.AllClasses() {
		for i, r := range o.ranker.TopN(records[class], topN) {
			selected = append(selected, contracts.PortfolioEntry{
				Position:     i + 1,
				Class:        class,
				Label:        r.Label,
				RankingValue: r.RankingValue,
				RateKind:     r.RateKind,
			})
		}
	}
	o.metrics.ObserveStage(contracts.StageRank.String(), time.Since(start), nil)

	// Allocate
	start = time.Now()
	labels := make([]string, len(selected))
	for i, e := range selected {
		labels[i] = e.Label
	}
	allocations, err := o.allocator.Allocate(config.TotalCapital, labels)
	o.metrics.ObserveStage(contracts.StageAllocate.String(), time.Since(start), err)
	if err != nil {
		return nil, &StageError{Stage: contracts.StageAllocate, Err: err}
	}

	// Project
	start = time.Now()
	for i := range selected {
		selected[i].Allocation = allocations[i]
		series, err := o.projector.Project(allocations[i], selected[i].RateKind, selected[i].RankingValue)
		if err != nil {
			o.metrics.ObserveStage(contracts.StageProject.String(), time.Since(start), err)
			return nil, &StageError{Stage: contracts.StageProject, Err: err}
		}
		selected[i].Series = series
	}
	o.metrics.ObserveStage(contracts.StageProject.String(), time.Since(start), nil)

	o.logger.WithFields(map[string]interface{}{
		"capital": config.TotalCapital,
		"top_n":   topN,
		"entries": len(selected),
	}).Debug("Simulation completed")

	return selected, nil
}
