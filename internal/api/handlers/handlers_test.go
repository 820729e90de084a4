package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/investsim/internal/brain"
	"github.com/wonny/investsim/internal/catalogue"
	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/config"
	"github.com/wonny/investsim/pkg/logger"
)

type fakeSimulator struct {
	got    brain.RunConfig
	err    error
	report *contracts.Report
}

func (f *fakeSimulator) Run(_ context.Context, cfg brain.RunConfig) (*brain.RunResult, error) {
	f.got = cfg
	if f.err != nil {
		return &brain.RunResult{RunID: cfg.RunID, Error: f.err}, f.err
	}
	return &brain.RunResult{RunID: cfg.RunID, Success: true, Report: f.report}, nil
}

func testReport() *contracts.Report {
	values := make([]float64, contracts.HorizonDays)
	for i := range values {
		values[i] = 500 * float64(i+1)
	}
	return &contracts.Report{
		RunID:        "sim-test",
		GeneratedAt:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		TotalCapital: 1000,
		TopN:         3,
		Entries: []contracts.PortfolioEntry{
			{
				Position:     1,
				Class:        contracts.ClassFixedIncome,
				Label:        "CDB 120% CDI",
				RankingValue: 0.12,
				RateKind:     contracts.RatePeriodic,
				Allocation:   contracts.Allocation{Label: "CDB 120% CDI", Amount: 1000},
				Series:       contracts.GrowthSeries{Label: "CDB 120% CDI", DailyRate: 0.004, Values: values},
			},
		},
	}
}

func testDefaults() config.SimConfig {
	return config.SimConfig{
		Capital:       1000,
		TopN:          3,
		EquitySymbols: []string{"PETR4.SA"},
		CryptoIDs:     []string{"bitcoin"},
	}
}

func post(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSimulate_UsesDefaults(t *testing.T) {
	sim := &fakeSimulator{report: testReport()}
	h := NewSimulationHandler(sim, testDefaults(), logger.NewNop())

	rec := post(t, h.Simulate, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1000.0, sim.got.Capital)
	assert.Equal(t, 3, sim.got.TopN)
	assert.Equal(t, []string{"PETR4.SA"}, sim.got.EquitySymbols)
	assert.Equal(t, []string{"bitcoin"}, sim.got.CryptoIDs)
	assert.True(t, sim.got.SkipRender)
	assert.NotEmpty(t, sim.got.RunID)

	var report contracts.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "sim-test", report.RunID)
	require.Len(t, report.Entries, 1)
	assert.Len(t, report.Entries[0].Series.Values, contracts.HorizonDays)
}

func TestSimulate_Overrides(t *testing.T) {
	sim := &fakeSimulator{report: testReport()}
	h := NewSimulationHandler(sim, testDefaults(), logger.NewNop())

	rec := post(t, h.Simulate, `{"capital": 2500, "top_n": 2, "equity_symbols": ["VALE3.SA"], "crypto_ids": ["cardano"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2500.0, sim.got.Capital)
	assert.Equal(t, 2, sim.got.TopN)
	assert.Equal(t, []string{"VALE3.SA"}, sim.got.EquitySymbols)
	assert.Equal(t, []string{"cardano"}, sim.got.CryptoIDs)
}

func TestSimulate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"capital":`},
		{"capital below minimum", `{"capital": 0.5}`},
		{"zero capital", `{"capital": 0}`},
		{"negative top_n", `{"top_n": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := &fakeSimulator{report: testReport()}
			h := NewSimulationHandler(sim, testDefaults(), logger.NewNop())

			rec := post(t, h.Simulate, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
			assert.Empty(t, sim.got.RunID, "simulator must not run")
		})
	}
}

func TestSimulate_ErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("FETCH failed: %w", contracts.ErrMissingPriceData), http.StatusUnprocessableEntity},
		{fmt.Errorf("FETCH failed: %w", contracts.ErrExternalFetchFailure), http.StatusBadGateway},
		{fmt.Errorf("ALLOCATE failed: %w", contracts.ErrInvalidAllocationInput), http.StatusBadRequest},
		{fmt.Errorf("PROJECT failed: %w", contracts.ErrInvalidRateInput), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			sim := &fakeSimulator{err: tt.err}
			h := NewSimulationHandler(sim, testDefaults(), logger.NewNop())

			rec := post(t, h.Simulate, `{"capital": 1000}`)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestSimulateChart(t *testing.T) {
	sim := &fakeSimulator{report: testReport()}
	h := NewSimulationHandler(sim, testDefaults(), logger.NewNop())

	rec := post(t, h.SimulateChart, `{"capital": 1000}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestCatalogueList(t *testing.T) {
	h := NewCatalogueHandler(catalogue.NewDefault(), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/catalogue", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CatalogueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.FixedIncome, 3)
	require.Len(t, resp.Funds, 3)
	assert.Equal(t, "CDB 110% CDI", resp.FixedIncome[0].Name)
	assert.Equal(t, contracts.ClassFund, resp.Funds[0].Class)
}

type failingCatalogue struct{}

func (failingCatalogue) Products(context.Context, contracts.AssetClass) ([]contracts.Product, error) {
	return nil, fmt.Errorf("load: %w", contracts.ErrInvalidCatalogue)
}

func TestCatalogueList_Error(t *testing.T) {
	h := NewCatalogueHandler(failingCatalogue{}, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/catalogue", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load catalogue")
}
