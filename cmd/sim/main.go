package main

import (
	"os"

	"github.com/wonny/investsim/cmd/sim/commands"
)

// main is the entry point for the simulator CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/sim [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
