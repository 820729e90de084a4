package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wonny/investsim/internal/brain"
	"github.com/wonny/investsim/internal/catalogue"
	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/external/coingecko"
	"github.com/wonny/investsim/internal/external/yahoo"
	"github.com/wonny/investsim/internal/marketdata"
	"github.com/wonny/investsim/internal/portfolio"
	"github.com/wonny/investsim/internal/projection"
	"github.com/wonny/investsim/internal/selection"
	"github.com/wonny/investsim/pkg/config"
	"github.com/wonny/investsim/pkg/database"
	"github.com/wonny/investsim/pkg/logger"
	"github.com/wonny/investsim/pkg/metrics"
	"github.com/wonny/investsim/pkg/redis"
)

const cachePrefix = "investsim"

// app holds the wired infrastructure shared by every command
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Registry
	redis     *redis.Client
	db        *database.DB
	catalogue contracts.Catalogue
	prices    *marketdata.CachedPriceSource
	spots     *marketdata.CachedSpotSource
}

// newApp loads config and connects the optional stores.
// Redis and PostgreSQL are optional: when unreachable the app falls back
// to an uncached run and the file/default catalogue.
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 3. Connect to Redis (quote cache)
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, quotes will not be cached")
		rc = redis.NewFromRedis(nil)
	}
	a.redis = rc

	// 4. Connect to database (catalogue)
	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Debug("DATABASE_URL not set, using file catalogue")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		a.db = db
		log.Info("Connected to database")
	}

	// 5. Open catalogue
	cat, err := catalogue.Open(ctx, cfg, a.db, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	a.catalogue = cat

	// 6. Create external API clients behind the quote cache
	cache := redis.NewCache(rc, cachePrefix)

	yahooClient := yahoo.NewClient(yahoo.NewHTTPClient(cfg.Yahoo, log), cfg.Yahoo, cfg.Sim.HistoryRange, log)
	a.prices = marketdata.NewCachedPriceSource(yahooClient, cache, cfg.Redis.QuoteTTL, cfg.Sim.HistoryRange, a.metrics, log)

	geckoClient := coingecko.NewClient(coingecko.NewHTTPClient(cfg.CoinGecko, log), cfg.CoinGecko, cfg.Sim.QuoteCurrency, log)
	a.spots = marketdata.NewCachedSpotSource(geckoClient, cache, cfg.Redis.QuoteTTL, cfg.Sim.QuoteCurrency, a.metrics, log)

	return a, nil
}

// orchestrator builds the pipeline with the given render sinks
func (a *app) orchestrator(sinks ...contracts.RenderSink) *brain.Orchestrator {
	return brain.NewOrchestrator(
		selection.NewRanker(a.log),
		portfolio.NewAllocator(a.log),
		projection.NewProjector(a.log),
		a.prices,
		a.spots,
		a.catalogue,
		sinks,
		a.metrics,
		a.log,
	)
}

// Close releases the connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close redis: %v\n", err)
		}
	}
}
