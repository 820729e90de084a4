package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sim",
	Short: "InvestSim - 자산군별 랭킹, 균등 배분, 30일 복리 시뮬레이션",
	Long: `InvestSim Unified CLI

주식, 암호화폐, 고정수익, 펀드 4개 자산군에서 상위 N개를 골라
투자금을 균등 배분하고 30일 동안의 평가액을 추정합니다.

Usage:
  go run ./cmd/sim [command]

Examples:
  go run ./cmd/sim simulate --capital 1000
  go run ./cmd/sim simulate --capital 5000 --top-n 2 --chart evolution.png
  go run ./cmd/sim api
  go run ./cmd/sim scheduler start
  go run ./cmd/sim catalogue list`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
