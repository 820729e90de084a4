package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/investsim/internal/catalogue"
	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/logger"
)

type fakeHistories struct {
	failing map[string]bool
	seen    []string
}

func (f *fakeHistories) Refresh(_ context.Context, symbol string) ([]float64, error) {
	f.seen = append(f.seen, symbol)
	if f.failing[symbol] {
		return nil, contracts.ErrExternalFetchFailure
	}
	return []float64{1, 2, 3}, nil
}

type fakeSpots struct {
	err   error
	calls int
}

func (f *fakeSpots) Refresh(_ context.Context, ids []string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = 100
	}
	return out, nil
}

func TestQuoteWarmupJob_Metadata(t *testing.T) {
	job := NewQuoteWarmupJob(&fakeHistories{}, &fakeSpots{}, nil, nil, "0 */10 * * * *", logger.NewNop())

	assert.Equal(t, "quote_warmup", job.Name())
	assert.Equal(t, "0 */10 * * * *", job.Schedule())
}

func TestQuoteWarmupJob_RefreshesEverything(t *testing.T) {
	histories := &fakeHistories{}
	spots := &fakeSpots{}
	job := NewQuoteWarmupJob(histories, spots,
		[]string{"PETR4.SA", "VALE3.SA"}, []string{"bitcoin"}, "@hourly", logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"PETR4.SA", "VALE3.SA"}, histories.seen)
	assert.Equal(t, 1, spots.calls)
}

func TestQuoteWarmupJob_ContinuesPastFailures(t *testing.T) {
	histories := &fakeHistories{failing: map[string]bool{"PETR4.SA": true}}
	spots := &fakeSpots{err: errors.New("coingecko down")}
	job := NewQuoteWarmupJob(histories, spots,
		[]string{"PETR4.SA", "VALE3.SA"}, []string{"bitcoin"}, "@hourly", logger.NewNop())

	err := job.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrExternalFetchFailure)
	assert.ErrorContains(t, err, "history PETR4.SA")
	assert.ErrorContains(t, err, "coingecko down")
	assert.Equal(t, []string{"PETR4.SA", "VALE3.SA"}, histories.seen)
}

func TestQuoteWarmupJob_SkipsSpotsWithoutIDs(t *testing.T) {
	spots := &fakeSpots{}
	job := NewQuoteWarmupJob(&fakeHistories{}, spots, []string{"PETR4.SA"}, nil, "@hourly", logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, spots.calls)
}

func TestQuoteWarmupJob_CancelledContext(t *testing.T) {
	histories := &fakeHistories{}
	job := NewQuoteWarmupJob(histories, &fakeSpots{}, []string{"PETR4.SA"}, nil, "@hourly", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Empty(t, histories.seen)
}

type fakeSeeder struct {
	seeded []*catalogue.File
	err    error
}

func (f *fakeSeeder) Seed(_ context.Context, file *catalogue.File) error {
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, file)
	return nil
}

func TestCatalogueSyncJob_SeedsOncePerHash(t *testing.T) {
	seeder := &fakeSeeder{}
	job := NewCatalogueSyncJob(seeder, "", "@hourly", logger.NewNop())

	assert.Equal(t, "catalogue_sync", job.Name())
	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, seeder.seeded, 1)
	assert.Len(t, seeder.seeded[0].FixedIncome, 3)
}

func TestCatalogueSyncJob_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	content := `version: 1
fixed_income:
  - name: Tesouro Selic
    monthly_rate: 0.09
funds:
  - name: Fundo Imobiliário
    monthly_rate: 0.06
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	seeder := &fakeSeeder{}
	job := NewCatalogueSyncJob(seeder, path, "@hourly", logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, seeder.seeded, 1)
	assert.Equal(t, "Tesouro Selic", seeder.seeded[0].FixedIncome[0].Name)
}

func TestCatalogueSyncJob_Errors(t *testing.T) {
	job := NewCatalogueSyncJob(&fakeSeeder{}, filepath.Join(t.TempDir(), "missing.yaml"), "@hourly", logger.NewNop())
	assert.ErrorContains(t, job.Run(context.Background()), "load catalogue")

	seeder := &fakeSeeder{err: errors.New("db down")}
	job = NewCatalogueSyncJob(seeder, "", "@hourly", logger.NewNop())
	assert.ErrorContains(t, job.Run(context.Background()), "seed catalogue")

	// a failed seed is retried on the next run
	seeder.err = nil
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, seeder.seeded, 1)
}

// slowSeeder records how many seeds overlap
type slowSeeder struct {
	mu      sync.Mutex
	seeded  int
	active  atomic.Int32
	overlap atomic.Bool
}

func (s *slowSeeder) Seed(_ context.Context, _ *catalogue.File) error {
	if s.active.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.active.Add(-1)

	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.seeded++
	s.mu.Unlock()
	return nil
}

func TestCatalogueSyncJob_ConcurrentRunsSeedOnce(t *testing.T) {
	seeder := &slowSeeder{}
	job := NewCatalogueSyncJob(seeder, "", "@hourly", logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, job.Run(context.Background()))
		}()
	}
	wg.Wait()

	assert.False(t, seeder.overlap.Load(), "runs must not overlap")
	assert.Equal(t, 1, seeder.seeded)
}
