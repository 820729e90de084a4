package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/investsim/internal/catalogue"
	"github.com/wonny/investsim/pkg/logger"
)

// CatalogueSeeder replaces the stored catalogue
type CatalogueSeeder interface {
	Seed(ctx context.Context, f *catalogue.File) error
}

// CatalogueSyncJob pushes the catalogue file into the database
// whenever its content hash changes
type CatalogueSyncJob struct {
	seeder   CatalogueSeeder
	path     string
	schedule string
	logger   *logger.Logger

	mu       sync.Mutex // serializes runs and guards lastHash
	lastHash string
}

// NewCatalogueSyncJob creates a new catalogue sync job.
// An empty path syncs the built-in defaults.
func NewCatalogueSyncJob(seeder CatalogueSeeder, path, schedule string, log *logger.Logger) *CatalogueSyncJob {
	return &CatalogueSyncJob{
		seeder:   seeder,
		path:     path,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *CatalogueSyncJob) Name() string {
	return "catalogue_sync"
}

// Schedule returns the cron schedule
func (j *CatalogueSyncJob) Schedule() string {
	return j.schedule
}

// Run seeds the database when the file changed since the last successful sync
func (j *CatalogueSyncJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f := catalogue.Default()
	if j.path != "" {
		loaded, err := catalogue.Load(j.path)
		if err != nil {
			return fmt.Errorf("load catalogue: %w", err)
		}
		f = loaded
	}

	hash, err := catalogue.Hash(f)
	if err != nil {
		return fmt.Errorf("hash catalogue: %w", err)
	}
	if hash == j.lastHash {
		j.logger.WithField("hash", hash).Debug("Catalogue unchanged, skipping sync")
		return nil
	}

	if err := j.seeder.Seed(ctx, f); err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}
	j.lastHash = hash

	j.logger.WithFields(map[string]interface{}{
		"hash":         hash,
		"fixed_income": len(f.FixedIncome),
		"funds":        len(f.Funds),
	}).Info("Catalogue synced")

	return nil
}
