package factors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLStore reads and writes the cost_factors table. It works on a *sqlx.DB
// or a *sqlx.Tx, and rebinds placeholders for the connected driver.
type SQLStore struct {
	db sqlx.ExtContext
}

// NewSQLStore returns a store over the cost_factors table. db may be a
// *sqlx.DB or a *sqlx.Tx.
func NewSQLStore(db sqlx.ExtContext) *SQLStore {
	return &SQLStore{db: db}
}

var _ Store = (*SQLStore)(nil)

const selectFactorColumns = `
	SELECT
		id,
		factor_name,
		COALESCE(factor_category, '') AS factor_category,
		COALESCE(restaurant_theme, '') AS restaurant_theme,
		COALESCE(revenue_size, '') AS revenue_size,
		multiplier,
		base_cost,
		COALESCE(description, '') AS description,
		active
	FROM cost_factors
`

// Lookup returns the value of the newest active row stored under exactly key.
func (s *SQLStore) Lookup(ctx context.Context, key Key) (float64, bool, error) {
	var row struct {
		Multiplier float64 `db:"multiplier"`
		BaseCost   float64 `db:"base_cost"`
	}

	err := sqlx.GetContext(ctx, s.db, &row, s.db.Rebind(`
		SELECT multiplier, base_cost
		FROM cost_factors
		WHERE factor_name = ?
			AND COALESCE(restaurant_theme, '') = ?
			AND COALESCE(revenue_size, '') = ?
			AND active = TRUE
		ORDER BY id DESC
		LIMIT 1
	`), key.Name, string(key.Theme), string(key.RevenueSize))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &StoreError{Op: "lookup", Key: key, Err: err}
	}

	return CostFactor{Multiplier: row.Multiplier, BaseCost: row.BaseCost}.Value(), true, nil
}

// List returns every factor row, active or not, ordered by name and scope.
func (s *SQLStore) List(ctx context.Context) ([]CostFactor, error) {
	factors := make([]CostFactor, 0)
	if err := sqlx.SelectContext(ctx, s.db, &factors, selectFactorColumns+`
		ORDER BY factor_name, COALESCE(restaurant_theme, ''), COALESCE(revenue_size, ''), id
	`); err != nil {
		return nil, fmt.Errorf("query cost factors: %w", err)
	}
	return factors, nil
}

// ListByCategory returns the rows of one factor category.
func (s *SQLStore) ListByCategory(ctx context.Context, category string) ([]CostFactor, error) {
	factors := make([]CostFactor, 0)
	if err := sqlx.SelectContext(ctx, s.db, &factors, s.db.Rebind(selectFactorColumns+`
		WHERE factor_category = ?
		ORDER BY factor_name, COALESCE(restaurant_theme, ''), COALESCE(revenue_size, ''), id
	`), category); err != nil {
		return nil, fmt.Errorf("query cost factors by category: %w", err)
	}
	return factors, nil
}

// Ensure inserts f unless a row already exists at its scope. Existing rows are
// left untouched so local edits survive reseeding.
func (s *SQLStore) Ensure(ctx context.Context, f CostFactor) (bool, error) {
	exists, err := s.exists(ctx, f.Key())
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.insert(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

// Upsert writes f at its scope, replacing the existing row's values. It
// reports whether a new row was inserted.
func (s *SQLStore) Upsert(ctx context.Context, f CostFactor) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE cost_factors
		SET
			factor_category = ?,
			multiplier = ?,
			base_cost = ?,
			description = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE factor_name = ?
			AND COALESCE(restaurant_theme, '') = ?
			AND COALESCE(revenue_size, '') = ?
	`), f.Category, f.Multiplier, f.BaseCost, f.Description, f.Active, f.Name, string(f.Theme), string(f.RevenueSize))
	if err != nil {
		return false, fmt.Errorf("update cost factor %s: %w", f.Key(), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update cost factor %s: %w", f.Key(), err)
	}
	if affected > 0 {
		return false, nil
	}

	if err := s.insert(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) exists(ctx context.Context, key Key) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, s.db, &exists, s.db.Rebind(`
		SELECT EXISTS(
			SELECT 1
			FROM cost_factors
			WHERE factor_name = ?
				AND COALESCE(restaurant_theme, '') = ?
				AND COALESCE(revenue_size, '') = ?
		)
	`), key.Name, string(key.Theme), string(key.RevenueSize))
	if err != nil {
		return false, fmt.Errorf("check cost factor %s existence: %w", key, err)
	}
	return exists, nil
}

func (s *SQLStore) insert(ctx context.Context, f CostFactor) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO cost_factors (
			factor_name,
			factor_category,
			restaurant_theme,
			revenue_size,
			multiplier,
			base_cost,
			description,
			active
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), f.Name, f.Category, nullIfEmpty(string(f.Theme)), nullIfEmpty(string(f.RevenueSize)), f.Multiplier, f.BaseCost, f.Description, f.Active); err != nil {
		return fmt.Errorf("insert cost factor %s: %w", f.Key(), err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
