// Package marketdata decorates the external quote sources with the Redis
// quote cache. A disabled cache turns every decorator into a pass-through.
package marketdata

import (
	"context"
	"time"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/logger"
	"github.com/wonny/investsim/pkg/metrics"
	"github.com/wonny/investsim/pkg/redis"
)

// QuoteCache is the subset of redis.Cache the decorators need
type QuoteCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

var _ QuoteCache = (*redis.Cache)(nil)

// CachedPriceSource caches closing-price histories per symbol and window
type CachedPriceSource struct {
	next    contracts.PriceSource
	cache   QuoteCache
	ttl     time.Duration
	window  string
	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewCachedPriceSource wraps next with the quote cache
func NewCachedPriceSource(next contracts.PriceSource, cache QuoteCache, ttl time.Duration, window string, registry *metrics.Registry, log *logger.Logger) *CachedPriceSource {
	return &CachedPriceSource{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		window:  window,
		metrics: registry,
		logger:  log,
	}
}

// History serves from cache when possible, else fetches and stores
func (s *CachedPriceSource) History(ctx context.Context, symbol string) ([]float64, error) {
	key := redis.HistoryKey(symbol, s.window)

	var closes []float64
	found, err := s.cache.Get(ctx, key, &closes)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Quote cache read failed")
	}
	s.metrics.RecordCache("history", found)
	if found && len(closes) > 0 {
		return closes, nil
	}

	return s.Refresh(ctx, symbol)
}

// Refresh fetches from the upstream source and overwrites the cache entry
func (s *CachedPriceSource) Refresh(ctx context.Context, symbol string) ([]float64, error) {
	closes, err := s.next.History(ctx, symbol)
	if err != nil {
		return nil, err
	}

	key := redis.HistoryKey(symbol, s.window)
	if err := s.cache.Set(ctx, key, closes, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Quote cache write failed")
	}
	return closes, nil
}

// CachedSpotSource caches spot quotes per id and currency
type CachedSpotSource struct {
	next     contracts.SpotRateSource
	cache    QuoteCache
	ttl      time.Duration
	currency string
	metrics  *metrics.Registry
	logger   *logger.Logger
}

// NewCachedSpotSource wraps next with the quote cache
func NewCachedSpotSource(next contracts.SpotRateSource, cache QuoteCache, ttl time.Duration, currency string, registry *metrics.Registry, log *logger.Logger) *CachedSpotSource {
	return &CachedSpotSource{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		currency: currency,
		metrics:  registry,
		logger:   log,
	}
}

// SpotPrices answers cached ids from Redis and fetches only the misses
func (s *CachedSpotSource) SpotPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(ids))
	var misses []string

	for _, id := range ids {
		var price float64
		found, err := s.cache.Get(ctx, redis.SpotKey(id, s.currency), &price)
		if err != nil {
			s.logger.WithError(err).WithField("id", id).Warn("Quote cache read failed")
		}
		s.metrics.RecordCache("spot", found)
		if found {
			prices[id] = price
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return prices, nil
	}

	fetched, err := s.Refresh(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, price := range fetched {
		prices[id] = price
	}
	return prices, nil
}

// Refresh fetches ids from the upstream source and overwrites their cache entries
func (s *CachedSpotSource) Refresh(ctx context.Context, ids []string) (map[string]float64, error) {
	fetched, err := s.next.SpotPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	for id, price := range fetched {
		if err := s.cache.Set(ctx, redis.SpotKey(id, s.currency), price, s.ttl); err != nil {
			s.logger.WithError(err).WithField("id", id).Warn("Quote cache write failed")
		}
	}
	return fetched, nil
}
