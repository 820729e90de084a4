package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/internal/api"
	"github.com/wonny/investsim/internal/api/handlers"
	"github.com/wonny/investsim/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  GET  /metrics              - Prometheus metrics
  POST /api/simulate         - 시뮬레이션 실행 (JSON 리포트)
  POST /api/simulate/chart   - 시뮬레이션 실행 (PNG 차트)
  GET  /api/catalogue        - 고정수익/펀드 상품 목록

Example:
  go run ./cmd/sim api
  go run ./cmd/sim api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== InvestSim API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	simHandler := handlers.NewSimulationHandler(a.orchestrator(), a.cfg.Sim, a.log)
	catHandler := handlers.NewCatalogueHandler(a.catalogue, a.log)
	limiter := redis.NewRateLimiter(a.redis, cachePrefix)

	router := api.NewRouter(simHandler, catHandler, a.metrics, limiter, a.log)
	server := api.New(a.cfg, a.log, router)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /metrics")
	fmt.Println("  POST /api/simulate")
	fmt.Println("  POST /api/simulate/chart")
	fmt.Println("  GET  /api/catalogue")
	fmt.Println("\nPress Ctrl+C to stop")

	return server.Run(ctx, nil)
}
