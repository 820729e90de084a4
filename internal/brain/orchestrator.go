package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/normalize"
	"github.com/wonny/investsim/internal/selection"
	"github.com/wonny/investsim/pkg/logger"
	"github.com/wonny/investsim/pkg/metrics"
)

// Orchestrator coordinates fetch → normalize → rank → allocate → project → render
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Core components
	ranker    contracts.Ranker
	allocator contracts.Allocator
	projector contracts.Projector

	// External collaborators (only needed by Run)
	prices    contracts.PriceSource
	spots     contracts.SpotRateSource
	catalogue contracts.Catalogue
	sinks     []contracts.RenderSink

	metrics *metrics.Registry
	logger  *logger.Logger
}

// SimulateConfig holds the scalar inputs of the pure core
type SimulateConfig struct {
	TotalCapital float64
	TopN         int // <= 0 → selection.DefaultTopN
}

// RunConfig holds configuration for a full run
type RunConfig struct {
	RunID         string
	Date          time.Time
	Capital       float64
	TopN          int
	EquitySymbols []string
	CryptoIDs     []string
	SkipRender    bool // API callers serialize the report themselves
}

// RunResult holds the results of a complete run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []string
	Datasets        *contracts.Datasets
	Report          *contracts.Report
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	ranker contracts.Ranker,
	allocator contracts.Allocator,
	projector contracts.Projector,
	prices contracts.PriceSource,
	spots contracts.SpotRateSource,
	catalogue contracts.Catalogue,
	sinks []contracts.RenderSink,
	registry *metrics.Registry,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		ranker:    ranker,
		allocator: allocator,
		projector: projector,
		prices:    prices,
		spots:     spots,
		catalogue: catalogue,
		sinks:     sinks,
		metrics:   registry,
		logger:    logger,
	}
}

// GenerateRunID returns a unique identifier for a run
func GenerateRunID() string {
	return "sim-" + uuid.NewString()
}

// Run fetches the four datasets, simulates and hands the report to the sinks.
// The first error from any stage aborts the run and no report is returned.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	if config.Date.IsZero() {
		config.Date = startTime
	}

	result := &RunResult{
		RunID:           config.RunID,
		CompletedStages: make([]string, 0),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"capital":  config.Capital,
		"top_n":    config.TopN,
		"equities": len(config.EquitySymbols),
		"crypto":   len(config.CryptoIDs),
	}).Info("Starting simulation run")

	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage, err)
		result.Duration = time.Since(startTime)
		o.metrics.RecordRun(result.Error)
		o.logger.WithError(err).WithFields(map[string]interface{}{
			"run_id": config.RunID,
			"stage":  stage.String(),
		}).Error("Simulation run failed")
		return result, result.Error
	}

	// Fetch
	datasets, err := o.runFetch(ctx, config)
	if err != nil {
		return fail(contracts.StageFetch, err)
	}
	result.Datasets = datasets
	result.CompletedStages = append(result.CompletedStages, contracts.StageFetch.String())

	// Normalize → Rank → Allocate → Project
	entries, err := o.Simulate(*datasets, SimulateConfig{TotalCapital: config.Capital, TopN: config.TopN})
	if err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			return fail(stageErr.Stage, stageErr.Err)
		}
		return fail(contracts.StageNormalize, err)
	}
	result.CompletedStages = append(result.CompletedStages,
		contracts.StageNormalize.String(),
		contracts.StageRank.String(),
		contracts.StageAllocate.String(),
		contracts.StageProject.String(),
	)

	report := &contracts.Report{
		RunID:        config.RunID,
		GeneratedAt:  config.Date,
		TotalCapital: config.Capital,
		TopN:         effectiveTopN(config.TopN),
		Entries:      entries,
	}

	// Render
	if !config.SkipRender {
		if err := o.runRender(ctx, report); err != nil {
			return fail(contracts.StageRender, err)
		}
		result.CompletedStages = append(result.CompletedStages, contracts.StageRender.String())
	}

	result.Report = report
	result.Success = true
	result.Duration = time.Since(startTime)
	o.metrics.RecordRun(nil)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    config.RunID,
		"duration":  result.Duration.Seconds(),
		"entries":   len(entries),
		"projected": report.ProjectedTotal(),
	}).Info("Simulation run completed successfully")

	return result, nil
}

// runFetch pulls the datasets sequentially in portfolio class order
func (o *Orchestrator) runFetch(ctx context.Context, config RunConfig) (*contracts.Datasets, error) {
	if o.prices == nil || o.spots == nil || o.catalogue == nil {
		return nil, errors.New("orchestrator has no data sources")
	}

	start := time.Now()
	datasets, err := o.fetch(ctx, config)
	o.metrics.ObserveStage(contracts.StageFetch.String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(map[string]interface{}{
		"equities":     len(datasets.Equities),
		"crypto":       len(datasets.Crypto.Prices),
		"fixed_income": len(datasets.FixedIncome),
		"funds":        len(datasets.Funds),
	}).Info("FETCH completed")

	return datasets, nil
}

func (o *Orchestrator) fetch(ctx context.Context, config RunConfig) (*contracts.Datasets, error) {
	datasets := &contracts.Datasets{}

	for _, symbol := range config.EquitySymbols {
		closes, err := o.prices.History(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("%s history: %w", symbol, err)
		}
		datasets.Equities = append(datasets.Equities, contracts.PriceHistory{Symbol: symbol, Closes: closes})
	}

	prices, err := o.spots.SpotPrices(ctx, config.CryptoIDs)
	if err != nil {
		return nil, fmt.Errorf("crypto spot prices: %w", err)
	}
	datasets.Crypto = contracts.SpotRates{Requested: config.CryptoIDs, Prices: prices}

	if datasets.FixedIncome, err = o.catalogueProducts(ctx, contracts.ClassFixedIncome); err != nil {
		return nil, err
	}
	if datasets.Funds, err = o.catalogueProducts(ctx, contracts.ClassFund); err != nil {
		return nil, err
	}

	return datasets, nil
}

// catalogueProducts fetches one rate-bearing class; an empty class is an error
// so the portfolio never silently loses a class
func (o *Orchestrator) catalogueProducts(ctx context.Context, class contracts.AssetClass) ([]contracts.Product, error) {
	products, err := o.catalogue.Products(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("%s catalogue: %w", class, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%s catalogue is empty: %w", class, contracts.ErrInvalidCatalogue)
	}
	return products, nil
}

// runRender hands the report to every sink in order
func (o *Orchestrator) runRender(ctx context.Context, report *contracts.Report) error {
	start := time.Now()
	var err error
	for _, sink := range o.sinks {
		if err = sink.Render(ctx, report); err != nil {
			break
		}
	}
	o.metrics.ObserveStage(contracts.StageRender.String(), time.Since(start), err)
	return err
}

// normalizeAll converts each raw dataset in portfolio class order
func normalizeAll(datasets contracts.Datasets) (map[contracts.AssetClass][]contracts.AssetRecord, error) {
	out := make(map[contracts.AssetClass][]contracts.AssetRecord, 4)

	var err error
	if out[contracts.ClassEquity], err = normalize.FromPriceHistories(contracts.ClassEquity, datasets.Equities); err != nil {
		return nil, fmt.Errorf("equities: %w", err)
	}
	if out[contracts.ClassCrypto], err = normalize.FromSpotRates(contracts.ClassCrypto, datasets.Crypto); err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	if out[contracts.ClassFixedIncome], err = normalize.FromProducts(contracts.ClassFixedIncome, datasets.FixedIncome); err != nil {
		return nil, fmt.Errorf("fixed income: %w", err)
	}
	if out[contracts.ClassFund], err = normalize.FromProducts(contracts.ClassFund, datasets.Funds); err != nil {
		return nil, fmt.Errorf("funds: %w", err)
	}

	return out, nil
}

func effectiveTopN(n int) int {
	if n <= 0 {
		return selection.DefaultTopN
	}
	return n
}
