package catalogue

import (
	"context"
	"fmt"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/config"
	"github.com/wonny/investsim/pkg/database"
	"github.com/wonny/investsim/pkg/logger"
)

// store is a writable catalogue, satisfied by Repository
type store interface {
	contracts.Catalogue
	Seed(ctx context.Context, f *File) error
}

var _ store = (*Repository)(nil)

// Open picks the catalogue source: database when connected, then the YAML
// file named by SIM_CATALOGUE_PATH, then the built-in products.
// An empty database is seeded from the file source first.
func Open(ctx context.Context, cfg *config.Config, db *database.DB, log *logger.Logger) (contracts.Catalogue, error) {
	f, source, err := fileSource(cfg)
	if err != nil {
		return nil, err
	}

	if db != nil && db.Pool != nil {
		repo := NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		if err := seedIfEmpty(ctx, repo, f, source, log); err != nil {
			return nil, err
		}
		log.Info("Catalogue source: database")
		return repo, nil
	}

	hash, err := Hash(f)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"source":       source,
		"hash":         hash[:12],
		"fixed_income": len(f.FixedIncome),
		"funds":        len(f.Funds),
	}).Info("Catalogue source: static")

	return NewStatic(f), nil
}

func fileSource(cfg *config.Config) (*File, string, error) {
	if cfg.Sim.CataloguePath == "" {
		return Default(), "defaults", nil
	}
	f, err := Load(cfg.Sim.CataloguePath)
	if err != nil {
		return nil, "", err
	}
	return f, cfg.Sim.CataloguePath, nil
}

// seedIfEmpty writes f into s when a rate-bearing class has no products.
// Stored products are never overwritten otherwise.
func seedIfEmpty(ctx context.Context, s store, f *File, source string, log *logger.Logger) error {
	for _, class := range []contracts.AssetClass{contracts.ClassFixedIncome, contracts.ClassFund} {
		products, err := s.Products(ctx, class)
		if err != nil {
			return fmt.Errorf("check catalogue %s: %w", class, err)
		}
		if len(products) > 0 {
			continue
		}

		if err := s.Seed(ctx, f); err != nil {
			return fmt.Errorf("seed empty catalogue: %w", err)
		}
		log.WithFields(map[string]interface{}{
			"source":      source,
			"empty_class": class.String(),
		}).Warn("Catalogue table incomplete, seeded from file source")
		return nil
	}
	return nil
}
