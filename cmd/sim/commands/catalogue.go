package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/internal/catalogue"
	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/render"
)

// catalogueCmd represents the catalogue command
var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "고정수익/펀드 상품 카탈로그",
	Long: `시뮬레이션에 사용되는 고정수익, 펀드 상품 카탈로그를 관리합니다.

Subcommands:
  list  - 현재 카탈로그 출력
  seed  - YAML(또는 기본값) 카탈로그를 데이터베이스에 저장

Example:
  go run ./cmd/sim catalogue list
  go run ./cmd/sim catalogue seed --file configs/catalogue.yaml`,
}

var (
	catalogueListCmd = &cobra.Command{
		Use:   "list",
		Short: "현재 카탈로그 출력",
		RunE:  listCatalogue,
	}

	catalogueSeedCmd = &cobra.Command{
		Use:   "seed",
		Short: "카탈로그를 데이터베이스에 저장",
		RunE:  seedCatalogue,
	}

	catalogueFile string
)

func init() {
	rootCmd.AddCommand(catalogueCmd)
	catalogueCmd.AddCommand(catalogueListCmd)
	catalogueCmd.AddCommand(catalogueSeedCmd)

	catalogueSeedCmd.Flags().StringVar(&catalogueFile, "file", "", "카탈로그 YAML 경로 (기본: SIM_CATALOGUE_PATH 또는 내장 기본값)")
}

func listCatalogue(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	for _, class := range []contracts.AssetClass{contracts.ClassFixedIncome, contracts.ClassFund} {
		products, err := a.catalogue.Products(cmd.Context(), class)
		if err != nil {
			return fmt.Errorf("list %s: %w", class, err)
		}

		fmt.Fprintf(out, "%s\n", class.DisplayName())
		for i, p := range products {
			fmt.Fprintf(out, "  %d. %s - %s\n", i+1, p.Name, render.FormatMonthlyRate(p.MonthlyRate))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func seedCatalogue(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	path := catalogueFile
	if path == "" {
		path = a.cfg.Sim.CataloguePath
	}

	f := catalogue.Default()
	if path != "" {
		if f, err = catalogue.Load(path); err != nil {
			return err
		}
	}

	if err := catalogue.NewRepository(a.db.Pool).Seed(cmd.Context(), f); err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}

	hash, err := catalogue.Hash(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Catalogue seeded (%d fixed income, %d funds, hash %s)\n",
		len(f.FixedIncome), len(f.Funds), hash)
	return nil
}
