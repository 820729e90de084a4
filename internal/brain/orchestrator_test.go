package brain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/portfolio"
	"github.com/wonny/investsim/internal/projection"
	"github.com/wonny/investsim/internal/selection"
	"github.com/wonny/investsim/pkg/logger"
	"github.com/wonny/investsim/pkg/metrics"
)

type fakePrices map[string][]float64

func (f fakePrices) History(_ context.Context, symbol string) ([]float64, error) {
	closes, ok := f[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrExternalFetchFailure)
	}
	return closes, nil
}

type fakeSpots struct {
	prices map[string]float64
	err    error
}

func (f fakeSpots) SpotPrices(_ context.Context, ids []string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64)
	for _, id := range ids {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeCatalogue map[contracts.AssetClass][]contracts.Product

func (f fakeCatalogue) Products(_ context.Context, class contracts.AssetClass) ([]contracts.Product, error) {
	return f[class], nil
}

type recordingSink struct {
	reports []*contracts.Report
	err     error
}

func (s *recordingSink) Render(_ context.Context, r *contracts.Report) error {
	s.reports = append(s.reports, r)
	return s.err
}

func defaultDatasets() contracts.Datasets {
	return contracts.Datasets{
		Equities: []contracts.PriceHistory{
			{Symbol: "PETR4.SA", Closes: []float64{37.5, 38.2}},
			{Symbol: "VALE3.SA", Closes: []float64{60.0, 61.4}},
			{Symbol: "ITUB4.SA", Closes: []float64{33.0, 33.1}},
		},
		Crypto: contracts.SpotRates{
			Requested: []string{"bitcoin", "ethereum", "cardano"},
			Prices:    map[string]float64{"bitcoin": 350000, "ethereum": 18000, "cardano": 2.1},
		},
		FixedIncome: []contracts.Product{
			{Name: "CDB 110% CDI", MonthlyRate: 0.11},
			{Name: "LCI 100% CDI", MonthlyRate: 0.10},
			{Name: "CDB 120% CDI", MonthlyRate: 0.12},
		},
		Funds: []contracts.Product{
			{Name: "Fundo Ações", MonthlyRate: 0.08},
			{Name: "Fundo Renda Fixa", MonthlyRate: 0.05},
			{Name: "Fundo Multimercado", MonthlyRate: 0.07},
		},
	}
}

func newCore(t *testing.T) *Orchestrator {
	t.Helper()
	log := logger.NewNop()
	return NewOrchestrator(
		selection.NewRanker(log),
		portfolio.NewAllocator(log),
		projection.NewProjector(log),
		nil, nil, nil, nil,
		nil,
		log,
	)
}

func newFull(t *testing.T, sink *recordingSink, spots fakeSpots) *Orchestrator {
	t.Helper()
	log := logger.NewNop()
	ds := defaultDatasets()
	prices := fakePrices{}
	for _, h := range ds.Equities {
		prices[h.Symbol] = h.Closes
	}
	catalogue := fakeCatalogue{
		contracts.ClassFixedIncome: ds.FixedIncome,
		contracts.ClassFund:        ds.Funds,
	}
	var sinks []contracts.RenderSink
	if sink != nil {
		sinks = append(sinks, sink)
	}
	return NewOrchestrator(
		selection.NewRanker(log),
		portfolio.NewAllocator(log),
		projection.NewProjector(log),
		prices, spots, catalogue, sinks,
		metrics.New(),
		log,
	)
}

func entryLabels(entries []contracts.PortfolioEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func TestSimulate_DefaultUniverse(t *testing.T) {
	entries, err := newCore(t).Simulate(defaultDatasets(), SimulateConfig{TotalCapital: 1200})
	require.NoError(t, err)
	require.Len(t, entries, 12)

	assert.Equal(t, []string{
		"VALE3.SA", "PETR4.SA", "ITUB4.SA",
		"bitcoin", "ethereum", "cardano",
		"CDB 120% CDI", "CDB 110% CDI", "LCI 100% CDI",
		"Fundo Ações", "Fundo Multimercado", "Fundo Renda Fixa",
	}, entryLabels(entries))

	for i, e := range entries {
		assert.Equal(t, i%3+1, e.Position, e.Label)
		assert.Equal(t, 100.0, e.Allocation.Amount, e.Label)
		assert.Equal(t, e.Label, e.Series.Label)
		assert.Len(t, e.Series.Values, contracts.HorizonDays)
	}

	assert.Equal(t, contracts.ClassEquity, entries[0].Class)
	assert.Equal(t, contracts.ClassFund, entries[11].Class)
	assert.Equal(t, projection.PriceOnlyDailyRate, entries[3].Series.DailyRate)
	assert.InDelta(t, 0.004, entries[6].Series.DailyRate, 1e-15)
	assert.InDelta(t, 100*math.Pow(1.004, 30), entries[6].Series.Final(), 1e-9)
}

func TestSimulate_OnePerClassSplitsCapital(t *testing.T) {
	entries, err := newCore(t).Simulate(defaultDatasets(), SimulateConfig{TotalCapital: 1000, TopN: 1})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for _, e := range entries {
		assert.Equal(t, 250.0, e.Allocation.Amount)
	}
	assert.Equal(t, []string{"VALE3.SA", "bitcoin", "CDB 120% CDI", "Fundo Ações"}, entryLabels(entries))
}

func TestSimulate_SmallClassReturnsAvailable(t *testing.T) {
	ds := defaultDatasets()
	ds.Funds = ds.Funds[:2]

	entries, err := newCore(t).Simulate(ds, SimulateConfig{TotalCapital: 1100, TopN: 3})
	require.NoError(t, err)
	require.Len(t, entries, 11)

	funds := 0
	for _, e := range entries {
		if e.Class == contracts.ClassFund {
			funds++
		}
		assert.Equal(t, 100.0, e.Allocation.Amount)
	}
	assert.Equal(t, 2, funds)
}

func TestSimulate_Idempotent(t *testing.T) {
	o := newCore(t)

	first, err := o.Simulate(defaultDatasets(), SimulateConfig{TotalCapital: 1000})
	require.NoError(t, err)
	second, err := o.Simulate(defaultDatasets(), SimulateConfig{TotalCapital: 1000})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulate_EmptyHistoryFailsWithoutOutput(t *testing.T) {
	ds := defaultDatasets()
	ds.Equities[1].Closes = nil

	entries, err := newCore(t).Simulate(ds, SimulateConfig{TotalCapital: 1000})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingPriceData)
	assert.Nil(t, entries)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, contracts.StageNormalize, stageErr.Stage)
}

func TestSimulate_InvalidCapital(t *testing.T) {
	entries, err := newCore(t).Simulate(defaultDatasets(), SimulateConfig{TotalCapital: 0})
	assert.ErrorIs(t, err, contracts.ErrInvalidAllocationInput)
	assert.Nil(t, entries)
}

func TestSimulate_NoAssets(t *testing.T) {
	_, err := newCore(t).Simulate(contracts.Datasets{}, SimulateConfig{TotalCapital: 1000})
	assert.ErrorIs(t, err, contracts.ErrInvalidAllocationInput)
}

func TestRun_Success(t *testing.T) {
	sink := &recordingSink{}
	o := newFull(t, sink, fakeSpots{prices: defaultDatasets().Crypto.Prices})

	result, err := o.Run(context.Background(), RunConfig{
		Capital:       1200,
		EquitySymbols: []string{"PETR4.SA", "VALE3.SA", "ITUB4.SA"},
		CryptoIDs:     []string{"bitcoin", "ethereum", "cardano"},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.RunID, "sim-"))
	require.NotNil(t, result.Report)
	assert.Len(t, result.Report.Entries, 12)
	assert.Equal(t, selection.DefaultTopN, result.Report.TopN)
	assert.InDelta(t, 1200, result.Report.Invested(), 1e-9)
	assert.Equal(t, []string{"FETCH", "NORMALIZE", "RANK", "ALLOCATE", "PROJECT", "RENDER"}, result.CompletedStages)

	require.Len(t, sink.reports, 1)
	assert.Same(t, result.Report, sink.reports[0])
}

func TestRun_SkipRender(t *testing.T) {
	sink := &recordingSink{}
	o := newFull(t, sink, fakeSpots{prices: defaultDatasets().Crypto.Prices})

	result, err := o.Run(context.Background(), RunConfig{
		RunID:         "fixed",
		Capital:       1000,
		EquitySymbols: []string{"PETR4.SA"},
		CryptoIDs:     []string{"bitcoin"},
		SkipRender:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed", result.Report.RunID)
	assert.Empty(t, sink.reports)
}

func TestRun_FetchFailureAborts(t *testing.T) {
	sink := &recordingSink{}
	o := newFull(t, sink, fakeSpots{err: fmt.Errorf("coingecko: %w", contracts.ErrExternalFetchFailure)})

	result, err := o.Run(context.Background(), RunConfig{
		Capital:       1000,
		EquitySymbols: []string{"PETR4.SA"},
		CryptoIDs:     []string{"bitcoin"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrExternalFetchFailure)
	assert.False(t, result.Success)
	assert.Nil(t, result.Report)
	assert.Empty(t, sink.reports)
}

func TestRun_UnknownSymbolAborts(t *testing.T) {
	o := newFull(t, &recordingSink{}, fakeSpots{prices: defaultDatasets().Crypto.Prices})

	result, err := o.Run(context.Background(), RunConfig{
		Capital:       1000,
		EquitySymbols: []string{"XXXX3.SA"},
		CryptoIDs:     []string{"bitcoin"},
	})
	assert.ErrorIs(t, err, contracts.ErrExternalFetchFailure)
	assert.Contains(t, err.Error(), "XXXX3.SA")
	assert.Nil(t, result.Report)
}

func TestRun_MissingSpotQuote(t *testing.T) {
	o := newFull(t, &recordingSink{}, fakeSpots{prices: map[string]float64{"bitcoin": 1}})

	result, err := o.Run(context.Background(), RunConfig{
		Capital:       1000,
		EquitySymbols: []string{"PETR4.SA"},
		CryptoIDs:     []string{"bitcoin", "ethereum"},
	})
	assert.ErrorIs(t, err, contracts.ErrMissingPriceData)
	assert.Contains(t, err.Error(), "NORMALIZE failed")
	assert.Nil(t, result.Report)
}

func TestRun_RenderFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	o := newFull(t, sink, fakeSpots{prices: defaultDatasets().Crypto.Prices})

	result, err := o.Run(context.Background(), RunConfig{
		Capital:       1000,
		EquitySymbols: []string{"PETR4.SA"},
		CryptoIDs:     []string{"bitcoin"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RENDER failed")
	assert.False(t, result.Success)
}

func TestRun_EmptyCatalogueClassAborts(t *testing.T) {
	ds := defaultDatasets()
	prices := fakePrices{}
	for _, h := range ds.Equities {
		prices[h.Symbol] = h.Closes
	}

	tests := []struct {
		name      string
		catalogue fakeCatalogue
		missing   contracts.AssetClass
	}{
		{"no products at all", fakeCatalogue{}, contracts.ClassFixedIncome},
		{"funds missing", fakeCatalogue{contracts.ClassFixedIncome: ds.FixedIncome}, contracts.ClassFund},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewNop()
			sink := &recordingSink{}
			o := NewOrchestrator(
				selection.NewRanker(log),
				portfolio.NewAllocator(log),
				projection.NewProjector(log),
				prices, fakeSpots{prices: ds.Crypto.Prices}, tt.catalogue,
				[]contracts.RenderSink{sink},
				nil,
				log,
			)

			result, err := o.Run(context.Background(), RunConfig{
				Capital:       1000,
				EquitySymbols: []string{"PETR4.SA", "VALE3.SA", "ITUB4.SA"},
				CryptoIDs:     ds.Crypto.Requested,
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, contracts.ErrInvalidCatalogue)
			assert.Contains(t, err.Error(), "FETCH failed")
			assert.Contains(t, err.Error(), tt.missing.String())
			assert.False(t, result.Success)
			assert.Nil(t, result.Report)
			assert.Empty(t, sink.reports)
		})
	}
}

func TestRun_WithoutSources(t *testing.T) {
	_, err := newCore(t).Run(context.Background(), RunConfig{Capital: 1000})
	assert.Error(t, err)
}

func TestGenerateRunID(t *testing.T) {
	a := GenerateRunID()
	b := GenerateRunID()

	assert.True(t, strings.HasPrefix(a, "sim-"))
	assert.NotEqual(t, a, b)
}
