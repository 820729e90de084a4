package catalogue

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/normalize"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS catalogue_products (
		class        TEXT             NOT NULL,
		name         TEXT             NOT NULL,
		monthly_rate DOUBLE PRECISION NOT NULL CHECK (monthly_rate >= 0),
		position     INT              NOT NULL,
		updated_at   TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		PRIMARY KEY (class, name)
	)
`

// Repository serves the catalogue from PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the catalogue table if needed
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create catalogue_products: %w", err)
	}
	return nil
}

// Products returns the products of class in catalogue order
func (r *Repository) Products(ctx context.Context, class contracts.AssetClass) ([]contracts.Product, error) {
	query := `
		SELECT name, monthly_rate
		FROM catalogue_products
		WHERE class = $1
		ORDER BY position, name
	`

	rows, err := r.db.Query(ctx, query, class.String())
	if err != nil {
		return nil, fmt.Errorf("query catalogue %s: %w", class, err)
	}
	defer rows.Close()

	products := make([]contracts.Product, 0)
	for rows.Next() {
		p := contracts.Product{Class: class}
		if err := rows.Scan(&p.Name, &p.MonthlyRate); err != nil {
			return nil, fmt.Errorf("scan catalogue row: %w", err)
		}
		if err := normalize.ValidateProduct(p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalogue rows: %w", err)
	}

	return products, nil
}

// Seed replaces the stored catalogue with f in one transaction
func (r *Repository) Seed(ctx context.Context, f *File) error {
	if err := Validate(f); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM catalogue_products`); err != nil {
		return fmt.Errorf("clear catalogue: %w", err)
	}

	query := `
		INSERT INTO catalogue_products (class, name, monthly_rate, position, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	for _, class := range []contracts.AssetClass{contracts.ClassFixedIncome, contracts.ClassFund} {
		for i, p := range f.Products(class) {
			if _, err := tx.Exec(ctx, query, class.String(), p.Name, p.MonthlyRate, i); err != nil {
				return fmt.Errorf("insert %s: %w", p.Name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
