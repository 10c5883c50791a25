package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"gitlab.com/hmwai/subtrack/internal/models"
)

// RunMigrations creates the database schema. Every statement is idempotent
// so the list can grow append-only.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS charges (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			price DECIMAL(12, 2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			billing_cycle TEXT NOT NULL DEFAULT 'monthly',
			category TEXT NOT NULL DEFAULT 'Others',
			start_date DATE NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			payment_method TEXT NOT NULL DEFAULT '',
			payment_details TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_charges_active ON charges(active)`,
		`CREATE INDEX IF NOT EXISTS idx_charges_category ON charges(category)`,
		`CREATE INDEX IF NOT EXISTS idx_charges_start_date ON charges(start_date)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// SeedCategories inserts the default charge categories.
func SeedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	for _, cat := range models.DefaultCategories {
		_, err := pool.Exec(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			cat,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat, err)
		}
	}

	return nil
}
