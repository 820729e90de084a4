package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/internal/api/handlers"
	"github.com/wonny/investsim/internal/brain"
	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/render"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "포트폴리오 시뮬레이션 실행",
	Long: `자산군별 Top N을 선택하고 투자금을 균등 배분한 뒤 30일 평가액을 출력합니다.

단계:
  FETCH → NORMALIZE → RANK → ALLOCATE → PROJECT → RENDER

Example:
  go run ./cmd/sim simulate
  go run ./cmd/sim simulate --capital 2500 --top-n 2
  go run ./cmd/sim simulate --capital 1000 --chart evolution.png
  go run ./cmd/sim simulate --json > report.json`,
	RunE: runSimulate,
}

var (
	simCapital float64
	simTopN    int
	simChart   string
	simJSON    bool
	simSymbols []string
	simCrypto  []string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Float64Var(&simCapital, "capital", 1000, "투자 금액 (최소 1.00, 기본: SIM_CAPITAL)")
	simulateCmd.Flags().IntVar(&simTopN, "top-n", 0, "자산군별 선택 개수 (기본: SIM_TOP_N)")
	simulateCmd.Flags().StringVar(&simChart, "chart", "", "30일 평가액 차트 PNG 경로")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "리포트를 JSON으로 출력")
	simulateCmd.Flags().StringSliceVar(&simSymbols, "symbols", nil, "주식 종목 (기본: SIM_EQUITY_SYMBOLS)")
	simulateCmd.Flags().StringSliceVar(&simCrypto, "crypto", nil, "CoinGecko coin id (기본: SIM_CRYPTO_IDS)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("capital") {
		if err := validateCapital(simCapital); err != nil {
			return err
		}
	}
	if simTopN < 0 {
		return fmt.Errorf("--top-n must not be negative")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	chartPath := simChart
	if chartPath == "" {
		chartPath = a.cfg.Sim.ChartPath
	}
	sinks, flush := buildSinks(out, simJSON, chartPath)

	runCfg := simulateRunConfig(a.cfg.Sim.TopN, a.cfg.Sim.EquitySymbols, a.cfg.Sim.CryptoIDs)
	runCfg.Capital = a.cfg.Sim.Capital
	if cmd.Flags().Changed("capital") {
		runCfg.Capital = simCapital
	}
	if err := validateCapital(runCfg.Capital); err != nil {
		return err
	}

	result, err := a.orchestrator(sinks...).Run(ctx, runCfg)
	if err != nil {
		return fmt.Errorf("simulation %s: %w", runCfg.RunID, err)
	}

	if err := flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	a.log.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"entries":  len(result.Report.Entries),
		"duration": result.Duration,
	}).Info("Simulation finished")

	if chartPath != "" && !simJSON {
		fmt.Fprintf(out, "\n✅ Chart saved to %s\n", chartPath)
	}

	return nil
}

// buildSinks orders the file sinks before the report sink and buffers the
// report, so nothing reaches out unless every sink succeeded. flush writes
// the buffered report.
func buildSinks(out io.Writer, asJSON bool, chartPath string) ([]contracts.RenderSink, func() error) {
	var buf bytes.Buffer

	var sinks []contracts.RenderSink
	if chartPath != "" {
		sinks = append(sinks, render.NewChartSink(chartPath))
	}
	if asJSON {
		sinks = append(sinks, render.NewJSONSink(&buf))
	} else {
		sinks = append(sinks, render.NewTextSink(&buf))
	}

	flush := func() error {
		_, err := buf.WriteTo(out)
		return err
	}
	return sinks, flush
}

// simulateRunConfig merges flag overrides into the configured universe
func simulateRunConfig(topN int, symbols, cryptoIDs []string) brain.RunConfig {
	cfg := brain.RunConfig{
		RunID:         brain.GenerateRunID(),
		TopN:          topN,
		EquitySymbols: symbols,
		CryptoIDs:     cryptoIDs,
	}
	if simTopN > 0 {
		cfg.TopN = simTopN
	}
	if len(simSymbols) > 0 {
		cfg.EquitySymbols = simSymbols
	}
	if len(simCrypto) > 0 {
		cfg.CryptoIDs = simCrypto
	}
	return cfg
}

func validateCapital(capital float64) error {
	if !(capital >= handlers.MinCapital) {
		return fmt.Errorf("--capital must be at least %.2f, got %v", handlers.MinCapital, capital)
	}
	return nil
}

