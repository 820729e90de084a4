package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/investsim/pkg/logger"
)

// HistoryRefresher re-fetches one equity history into the quote cache
type HistoryRefresher interface {
	Refresh(ctx context.Context, symbol string) ([]float64, error)
}

// SpotRefresher re-fetches spot prices into the quote cache
type SpotRefresher interface {
	Refresh(ctx context.Context, ids []string) (map[string]float64, error)
}

// QuoteWarmupJob keeps the quote cache warm for the configured universe
// so that simulations rarely wait on Yahoo or CoinGecko
type QuoteWarmupJob struct {
	histories HistoryRefresher
	spots     SpotRefresher
	symbols   []string
	ids       []string
	schedule  string
	logger    *logger.Logger
}

// NewQuoteWarmupJob creates a new quote warm-up job
func NewQuoteWarmupJob(
	histories HistoryRefresher,
	spots SpotRefresher,
	symbols, ids []string,
	schedule string,
	log *logger.Logger,
) *QuoteWarmupJob {
	return &QuoteWarmupJob{
		histories: histories,
		spots:     spots,
		symbols:   symbols,
		ids:       ids,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *QuoteWarmupJob) Name() string {
	return "quote_warmup"
}

// Schedule returns the cron schedule
func (j *QuoteWarmupJob) Schedule() string {
	return j.schedule
}

// Run refreshes every symbol and the crypto spot batch.
// A failing symbol does not stop the others; all failures are joined.
func (j *QuoteWarmupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting quote warm-up")

	var errs []error
	refreshed := 0

	for _, symbol := range j.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := j.histories.Refresh(ctx, symbol); err != nil {
			errs = append(errs, fmt.Errorf("history %s: %w", symbol, err))
			continue
		}
		refreshed++
	}

	if len(j.ids) > 0 {
		prices, err := j.spots.Refresh(ctx, j.ids)
		if err != nil {
			errs = append(errs, fmt.Errorf("spot prices: %w", err))
		} else {
			refreshed += len(prices)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"refreshed": refreshed,
		"failed":    len(errs),
	}).Info("Quote warm-up completed")

	return errors.Join(errs...)
}
