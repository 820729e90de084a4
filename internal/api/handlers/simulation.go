package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wonny/investsim/internal/brain"
	"github.com/wonny/investsim/internal/render"
	"github.com/wonny/investsim/pkg/config"
	"github.com/wonny/investsim/pkg/logger"
)

// MinCapital is the smallest accepted investment amount
const MinCapital = 1.0

// Simulator runs one full simulation
type Simulator interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// SimulationHandler handles simulation API endpoints
// ⭐ SSOT: 시뮬레이션 API 핸들러는 이 구조체에서만
type SimulationHandler struct {
	simulator Simulator
	defaults  config.SimConfig
	logger    *logger.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(simulator Simulator, defaults config.SimConfig, log *logger.Logger) *SimulationHandler {
	return &SimulationHandler{
		simulator: simulator,
		defaults:  defaults,
		logger:    log,
	}
}

// SimulateRequest is the body of POST /api/simulate.
// Omitted fields fall back to the server's SIM_* configuration.
type SimulateRequest struct {
	Capital       *float64 `json:"capital"`
	TopN          int      `json:"top_n"`
	EquitySymbols []string `json:"equity_symbols"`
	CryptoIDs     []string `json:"crypto_ids"`
}

// Simulate runs a simulation and returns the report as JSON
// POST /api/simulate
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, result.Report)
}

// SimulateChart runs a simulation and returns the 30-day evolution chart
// POST /api/simulate/chart
func (h *SimulationHandler) SimulateChart(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}

	png, err := render.ChartPNG(result.Report)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render chart")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *SimulationHandler) run(w http.ResponseWriter, r *http.Request) (*brain.RunResult, bool) {
	var req SimulateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body")
			return nil, false
		}
	}

	runCfg, err := h.runConfig(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	result, err := h.simulator.Run(r.Context(), runCfg)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runCfg.RunID).Warn("Simulation request failed")
		respondError(w, statusFor(err), err.Error())
		return nil, false
	}

	return result, true
}

func (h *SimulationHandler) runConfig(req SimulateRequest) (brain.RunConfig, error) {
	cfg := brain.RunConfig{
		RunID:         brain.GenerateRunID(),
		Capital:       h.defaults.Capital,
		TopN:          h.defaults.TopN,
		EquitySymbols: h.defaults.EquitySymbols,
		CryptoIDs:     h.defaults.CryptoIDs,
		SkipRender:    true,
	}

	if req.Capital != nil {
		cfg.Capital = *req.Capital
	}
	if cfg.Capital < MinCapital {
		return cfg, fmt.Errorf("capital must be at least %.2f", MinCapital)
	}
	if req.TopN < 0 {
		return cfg, fmt.Errorf("top_n must not be negative")
	}
	if req.TopN > 0 {
		cfg.TopN = req.TopN
	}
	if len(req.EquitySymbols) > 0 {
		cfg.EquitySymbols = req.EquitySymbols
	}
	if len(req.CryptoIDs) > 0 {
		cfg.CryptoIDs = req.CryptoIDs
	}

	return cfg, nil
}
