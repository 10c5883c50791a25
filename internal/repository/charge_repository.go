// Package repository implements the Postgres-backed record store for charges.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gitlab.com/hmwai/subtrack/internal/database"
	"gitlab.com/hmwai/subtrack/internal/models"
)

// ErrChargeNotFound indicates the requested charge does not exist.
var ErrChargeNotFound = errors.New("charge not found")

const chargeColumns = `id, name, price, currency, billing_cycle, category, start_date, active,
	payment_method, payment_details, notes, created_at, updated_at`

// ChargeRepository handles charge database operations.
type ChargeRepository struct {
	db database.PGXDB
}

// NewChargeRepository creates a new ChargeRepository.
func NewChargeRepository(db database.PGXDB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

// Create adds a new charge. A missing ID is assigned here; IDs are stable
// for the record's lifetime and never reused.
func (r *ChargeRepository) Create(ctx context.Context, charge *models.Charge) error {
	if charge.ID == "" {
		charge.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO charges (id, name, price, currency, billing_cycle, category, start_date, active,
			payment_method, payment_details, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, charge.ID, charge.Name, charge.Price, charge.Currency, charge.BillingCycle,
		charge.Category, charge.StartDate, charge.Active,
		charge.PaymentMethod, charge.PaymentDetails, charge.Notes,
	).Scan(&charge.CreatedAt, &charge.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create charge: %w", err)
	}
	return nil
}

// GetByID retrieves a charge by ID.
func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*models.Charge, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrChargeNotFound
	}

	row := r.db.QueryRow(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id = $1`, id)
	charge, err := scanCharge(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChargeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get charge: %w", err)
	}
	return charge, nil
}

// Update mutates an existing charge in place.
func (r *ChargeRepository) Update(ctx context.Context, charge *models.Charge) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE charges
		SET name = $2, price = $3, currency = $4, billing_cycle = $5, category = $6,
			start_date = $7, active = $8, payment_method = $9, payment_details = $10,
			notes = $11, updated_at = NOW()
		WHERE id = $1
	`, charge.ID, charge.Name, charge.Price, charge.Currency, charge.BillingCycle,
		charge.Category, charge.StartDate, charge.Active,
		charge.PaymentMethod, charge.PaymentDetails, charge.Notes)
	if err != nil {
		return fmt.Errorf("failed to update charge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChargeNotFound
	}
	return nil
}

// Delete removes a charge.
func (r *ChargeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM charges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete charge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChargeNotFound
	}
	return nil
}

// List retrieves every charge, active or not, ordered by name.
func (r *ChargeRepository) List(ctx context.Context) ([]models.Charge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		ORDER BY name ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query charges: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

// ListActive retrieves the charges that participate in monetary
// aggregation. Inactive charges are retained but never counted.
func (r *ChargeRepository) ListActive(ctx context.Context) ([]models.Charge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE active
		ORDER BY name ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active charges: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

// ReplaceAll swaps the entire collection for the given one inside a single
// transaction. This backs import and the share-link overwrite, both of
// which are all-or-nothing by contract: on any failure the previous data
// survives untouched.
func (r *ChargeRepository) ReplaceAll(ctx context.Context, charges []models.Charge) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM charges`); err != nil {
		return fmt.Errorf("failed to clear charges: %w", err)
	}

	for i := range charges {
		c := &charges[i]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO charges (id, name, price, currency, billing_cycle, category, start_date, active,
				payment_method, payment_details, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, c.ID, c.Name, c.Price, c.Currency, c.BillingCycle, c.Category, c.StartDate,
			c.Active, c.PaymentMethod, c.PaymentDetails, c.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert charge %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// ListCategories returns the seeded category names in insertion order.
func (r *ChargeRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

func scanCharge(row pgx.Row) (*models.Charge, error) {
	var c models.Charge
	err := row.Scan(&c.ID, &c.Name, &c.Price, &c.Currency, &c.BillingCycle, &c.Category,
		&c.StartDate, &c.Active, &c.PaymentMethod, &c.PaymentDetails, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCharges(rows pgx.Rows) ([]models.Charge, error) {
	var charges []models.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		charges = append(charges, *charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate charges: %w", err)
	}
	return charges, nil
}
