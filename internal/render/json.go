package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/wonny/investsim/internal/contracts"
)

// JSONSink writes the report as indented JSON
type JSONSink struct {
	out io.Writer
}

// NewJSONSink creates a JSON sink writing to out
func NewJSONSink(out io.Writer) *JSONSink {
	return &JSONSink{out: out}
}

// Render encodes the report
func (s *JSONSink) Render(_ context.Context, report *contracts.Report) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
