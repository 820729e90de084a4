package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/vicanso/go-charts/v2"

	"github.com/wonny/investsim/internal/contracts"
)

const (
	chartWidth  = 1000
	chartHeight = 600
)

// ChartSink writes the 30-day evolution line chart as a PNG file
type ChartSink struct {
	path string
}

// NewChartSink creates a chart sink writing to path
func NewChartSink(path string) *ChartSink {
	return &ChartSink{path: path}
}

// Render draws the chart and writes it to the sink path
func (s *ChartSink) Render(_ context.Context, report *contracts.Report) error {
	png, err := ChartPNG(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, png, 0o644); err != nil {
		return fmt.Errorf("write chart %s: %w", s.path, err)
	}
	return nil
}

// ChartPNG draws one line per portfolio entry over days 1..30
func ChartPNG(report *contracts.Report) ([]byte, error) {
	if len(report.Entries) == 0 {
		return nil, errors.New("chart: report has no entries")
	}

	days := make([]string, contracts.HorizonDays)
	for i := range days {
		days[i] = strconv.Itoa(i + 1)
	}

	values := make([][]float64, 0, len(report.Entries))
	names := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		values = append(values, e.Series.Values)
		names = append(names, DisplayLabel(e))
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Evolução da Carteira (%d dias)", contracts.HorizonDays)),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        days,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionBottom,
		}),
		charts.PNGTypeOption(),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
