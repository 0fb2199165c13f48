// Package seed loads the built-in factor tables, and optional YAML overrides,
// into the cost_factors table.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/factors"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run inserts every built-in factor that is missing from the store. Rows that
// already exist are left untouched, so running it again is a no-op.
func Run(ctx context.Context, db *sqlx.DB) (Stats, error) {
	return apply(ctx, db, costing.BuiltinFactors(), false)
}

// Apply writes rows over the store, replacing existing rows at the same scope.
func Apply(ctx context.Context, db *sqlx.DB, rows []factors.CostFactor) (Stats, error) {
	return apply(ctx, db, rows, true)
}

func apply(ctx context.Context, db *sqlx.DB, rows []factors.CostFactor, overwrite bool) (Stats, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	store := factors.NewSQLStore(tx)
	stats := Stats{}

	for _, row := range rows {
		var inserted bool
		if overwrite {
			inserted, err = store.Upsert(ctx, row)
		} else {
			inserted, err = store.Ensure(ctx, row)
		}
		if err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}

		switch {
		case inserted:
			stats.Inserts++
		case overwrite:
			stats.Updates++
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// LoadFile reads factor rows from a YAML file. Rows are active unless the
// file says otherwise.
func LoadFile(path string) ([]factors.CostFactor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open factor file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

type fileRow struct {
	factors.CostFactor `yaml:",inline"`
	Active             *bool `yaml:"active,omitempty"`
}

// Decode parses a factor YAML document and validates every row.
func Decode(r io.Reader) ([]factors.CostFactor, error) {
	var doc struct {
		Factors []fileRow `yaml:"factors"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode factor file: %w", err)
	}

	rows := make([]factors.CostFactor, 0, len(doc.Factors))
	for i, fr := range doc.Factors {
		row := fr.CostFactor
		row.Active = fr.Active == nil || *fr.Active
		if row.Multiplier == 0 {
			row.Multiplier = 1
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("factor %d (%s): %w", i, row.Name, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Export writes rows as a factor YAML document.
func Export(w io.Writer, rows []factors.CostFactor) error {
	doc := struct {
		Factors []fileRow `yaml:"factors"`
	}{Factors: make([]fileRow, 0, len(rows))}
	for _, row := range rows {
		active := row.Active
		doc.Factors = append(doc.Factors, fileRow{CostFactor: row, Active: &active})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode factor file: %w", err)
	}
	return enc.Close()
}
