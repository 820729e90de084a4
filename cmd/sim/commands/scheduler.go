package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/internal/catalogue"
	"github.com/wonny/investsim/internal/scheduler"
	"github.com/wonny/investsim/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `시세 캐시 워밍업과 카탈로그 동기화 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/sim scheduler start
  go run ./cmd/sim scheduler list
  go run ./cmd/sim scheduler run quote_warmup`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- quote_warmup: SIM_WARMUP_SCHEDULE (기본 10분마다, Redis 시세 캐시 갱신)
- catalogue_sync: SIM_CATALOGUE_SYNC_SCHEDULE (기본 매시간, DATABASE_URL 설정 시)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler registers every job the current configuration supports
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)

	warmup := jobs.NewQuoteWarmupJob(
		a.prices,
		a.spots,
		a.cfg.Sim.EquitySymbols,
		a.cfg.Sim.CryptoIDs,
		a.cfg.Sim.WarmupSchedule,
		a.log,
	)
	if err := s.AddJob(warmup); err != nil {
		return nil, err
	}

	if a.db != nil {
		sync := jobs.NewCatalogueSyncJob(
			catalogue.NewRepository(a.db.Pool),
			a.cfg.Sim.CataloguePath,
			a.cfg.Sim.SyncSchedule,
			a.log,
		)
		if err := s.AddJob(sync); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== InvestSim Scheduler ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.redis.Enabled() {
		a.log.Warn("Redis disabled, quote warm-up only exercises the upstream APIs")
	}

	s, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	s.Start()
	fmt.Printf("\n✅ Scheduler running with jobs: %v\n", s.Jobs())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	stats := s.Stats()
	fmt.Fprintln(out, "Registered jobs:")
	for _, name := range s.Jobs() {
		fmt.Fprintf(out, "  %-16s %s\n", name, stats[name].Schedule)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	result, err := s.RunNow(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Success {
		fmt.Fprintf(out, "❌ %s failed after %d attempts: %s\n", result.JobName, result.Attempts, result.Error)
		return fmt.Errorf("job %s failed", result.JobName)
	}
	fmt.Fprintf(out, "✅ %s completed in %s\n", result.JobName, result.Duration)
	return nil
}
