// Package factors stores the weighting factors used by the cost formulas and
// resolves them through a scoped fallback chain with a TTL cache.
package factors

import (
	"context"
	"errors"
	"fmt"

	"github.com/Simplici0/facecost/internal/restaurant"
)

// Key identifies a factor at one scope. An empty Theme or RevenueSize means
// the factor applies regardless of that dimension.
type Key struct {
	Name        string
	Theme       restaurant.Theme
	RevenueSize restaurant.RevenueSize
}

func (k Key) String() string {
	theme, size := string(k.Theme), string(k.RevenueSize)
	if theme == "" {
		theme = "*"
	}
	if size == "" {
		size = "*"
	}
	return fmt.Sprintf("%s[%s/%s]", k.Name, theme, size)
}

// Store looks factors up at exactly the scope given by the key. It reports
// found=false when no active row exists; err is reserved for storage failures.
type Store interface {
	Lookup(ctx context.Context, key Key) (value float64, found bool, err error)
}

// CostFactor is one row of the factor table.
type CostFactor struct {
	ID          int64                  `db:"id" json:"id" yaml:"-"`
	Name        string                 `db:"factor_name" json:"factor_name" yaml:"name"`
	Category    string                 `db:"factor_category" json:"factor_category" yaml:"category"`
	Theme       restaurant.Theme       `db:"restaurant_theme" json:"restaurant_theme,omitempty" yaml:"theme,omitempty"`
	RevenueSize restaurant.RevenueSize `db:"revenue_size" json:"revenue_size,omitempty" yaml:"revenue_size,omitempty"`
	Multiplier  float64                `db:"multiplier" json:"multiplier" yaml:"multiplier,omitempty"`
	BaseCost    float64                `db:"base_cost" json:"base_cost" yaml:"base_cost,omitempty"`
	Description string                 `db:"description" json:"description" yaml:"description,omitempty"`
	Active      bool                   `db:"active" json:"active" yaml:"-"`
}

// Key returns the scope the row is stored under.
func (f CostFactor) Key() Key {
	return Key{Name: f.Name, Theme: f.Theme, RevenueSize: f.RevenueSize}
}

// Value is the number a lookup yields for the row: the base cost when it is
// set, the multiplier otherwise.
func (f CostFactor) Value() float64 {
	if f.BaseCost != 0 {
		return f.BaseCost
	}
	return f.Multiplier
}

// Validate checks that the row can be stored.
func (f CostFactor) Validate() error {
	if f.Name == "" {
		return errors.New("factor name is required")
	}
	if f.Theme != "" && !f.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", f.Theme)
	}
	if f.RevenueSize != "" && !f.RevenueSize.Valid() {
		return fmt.Errorf("unknown revenue size %q", f.RevenueSize)
	}
	if f.Multiplier < 0 || f.BaseCost < 0 {
		return errors.New("multiplier and base_cost must not be negative")
	}
	return nil
}

// StoreError wraps a failure of the underlying factor storage.
type StoreError struct {
	Op  string
	Key Key
	Err error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("factor store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
