package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/investsim/internal/contracts"
)

// TextSink prints the ranking sections, the suggested distribution and the totals
type TextSink struct {
	out io.Writer
}

// NewTextSink creates a text sink writing to out
func NewTextSink(out io.Writer) *TextSink {
	return &TextSink{out: out}
}

// Render writes the whole report in one write
func (s *TextSink) Render(_ context.Context, report *contracts.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Simulador de Investimentos (run %s)\n", report.RunID)

	for _, class := range contracts.AllClasses() {
		fmt.Fprintf(&b, "\n%s\n", SectionTitle(class, report.TopN))
		for _, e := range report.ByClass(class) {
			fmt.Fprintf(&b, "%d. %s: %s\n", e.Position, DisplayLabel(e), FormatRankingValue(e))
		}
	}

	b.WriteString("\nDistribuição sugerida\n")
	for _, e := range report.Entries {
		fmt.Fprintf(&b, "%s: %s\n", DisplayLabel(e), FormatBRL(e.Allocation.Amount))
	}

	fmt.Fprintf(&b, "\nEvolução da carteira (%d dias)\n", contracts.HorizonDays)
	fmt.Fprintf(&b, "Investido: %s\n", FormatBRL(report.Invested()))
	fmt.Fprintf(&b, "Projetado (dia %d): %s\n", contracts.HorizonDays, FormatBRL(report.ProjectedTotal()))

	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}
