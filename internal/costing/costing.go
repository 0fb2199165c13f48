// Package costing turns a validated restaurant input into an annual cost
// breakdown. Each category calculator multiplies a base quantity by a rate
// and a chain of factors; the factors come from a FactorResolver with the
// built-in tables as defaults.
package costing

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/Simplici0/facecost/internal/restaurant"
)

// Category tags a line item with the cost family it belongs to.
type Category string

const (
	CategoryStaff      Category = "staff"
	CategoryEquipment  Category = "equipment"
	CategoryLocation   Category = "location"
	CategoryOperations Category = "operations"
)

// Categories lists the categories in calculation order.
var Categories = []Category{CategoryStaff, CategoryEquipment, CategoryLocation, CategoryOperations}

// TotalTolerance is the largest accepted gap between a summary's total and
// the sum of its category subtotals.
const TotalTolerance = 0.01

// LineItem is one computed cost component, with the formula and the inputs
// used to produce it.
type LineItem struct {
	Category    Category       `json:"category"`
	Subcategory string         `json:"subcategory"`
	Amount      float64        `json:"amount"`
	Formula     string         `json:"formula"`
	Details     map[string]any `json:"details"`
}

// Summary is the result of one full calculation.
type Summary struct {
	SessionID        string     `json:"session_id"`
	SessionName      string     `json:"session_name"`
	StaffCosts       float64    `json:"staff_costs"`
	EquipmentCosts   float64    `json:"equipment_costs"`
	LocationCosts    float64    `json:"location_costs"`
	OperationalCosts float64    `json:"operational_costs"`
	TotalCost        float64    `json:"total_cost"`
	Breakdowns       []LineItem `json:"cost_breakdowns"`
}

// Consistent reports whether the total matches the sum of the subtotals.
func (s Summary) Consistent() bool {
	sum := s.StaffCosts + s.EquipmentCosts + s.LocationCosts + s.OperationalCosts
	return math.Abs(s.TotalCost-sum) <= TotalTolerance
}

// ByCategory groups the line items by category, keeping their order. Every
// category is present in the result, possibly with no items.
func (s Summary) ByCategory() map[Category][]LineItem {
	out := make(map[Category][]LineItem, len(Categories))
	for _, c := range Categories {
		out[c] = []LineItem{}
	}
	for _, item := range s.Breakdowns {
		out[item.Category] = append(out[item.Category], item)
	}
	return out
}

// FactorResolver supplies factor values for one theme and revenue size,
// falling back to the given defaults.
type FactorResolver interface {
	ResolveBatch(ctx context.Context, theme restaurant.Theme, size restaurant.RevenueSize, defaults map[string]float64) (map[string]float64, error)
}

// Recorder persists the line items of a calculation against a session.
type Recorder interface {
	SaveLineItems(ctx context.Context, sessionID string, items []LineItem) error
}

// CategoryCalculator produces the line items of one category.
type CategoryCalculator interface {
	Category() Category
	Calculate(ctx context.Context, in restaurant.Input) ([]LineItem, error)
}

// Calculator runs the four category calculators and aggregates their items.
type Calculator struct {
	categories []CategoryCalculator
	recorder   Recorder
	logger     *slog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithRecorder saves the line items of every calculation that carries a
// session id. Save failures are logged and do not fail the calculation.
func WithRecorder(r Recorder) Option {
	return func(c *Calculator) { c.recorder = r }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

// NewCalculator returns an aggregator running the four category calculators
// against resolver.
func NewCalculator(resolver FactorResolver, opts ...Option) *Calculator {
	c := &Calculator{
		categories: []CategoryCalculator{
			NewStaffCalculator(resolver),
			NewEquipmentCalculator(resolver),
			NewLocationCalculator(resolver),
			NewOperationsCalculator(resolver),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateAll computes every category for in. A factor store failure aborts
// the whole calculation; no partial summary is returned.
func (c *Calculator) CalculateAll(ctx context.Context, in restaurant.Input, sessionID string) (Summary, error) {
	summary := Summary{
		SessionID:   sessionID,
		SessionName: in.SessionName,
		Breakdowns:  make([]LineItem, 0, 2*len(c.categories)),
	}

	for _, calc := range c.categories {
		items, err := calc.Calculate(ctx, in)
		if err != nil {
			return Summary{}, err
		}

		subtotal := 0.0
		for _, item := range items {
			subtotal += item.Amount
		}
		subtotal = round2(subtotal)

		switch calc.Category() {
		case CategoryStaff:
			summary.StaffCosts = subtotal
		case CategoryEquipment:
			summary.EquipmentCosts = subtotal
		case CategoryLocation:
			summary.LocationCosts = subtotal
		case CategoryOperations:
			summary.OperationalCosts = subtotal
		}
		summary.Breakdowns = append(summary.Breakdowns, items...)
	}

	summary.TotalCost = round2(summary.StaffCosts + summary.EquipmentCosts + summary.LocationCosts + summary.OperationalCosts)

	c.logger.Info("calculation.completed",
		"session_id", sessionID,
		"session_name", in.SessionName,
		"theme", in.Theme,
		"revenue_size", in.RevenueSize,
		"total_cost", summary.TotalCost,
		"line_items", len(summary.Breakdowns),
	)

	if sessionID != "" && c.recorder != nil {
		if err := c.recorder.SaveLineItems(ctx, sessionID, summary.Breakdowns); err != nil {
			c.logger.Warn("calculation.persist_failed", "session_id", sessionID, "error", err)
		}
	}

	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
