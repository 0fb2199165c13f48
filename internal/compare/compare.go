// Package compare runs several cost scenarios concurrently and picks the
// cheapest one.
package compare

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/logger"
	"github.com/Simplici0/facecost/internal/restaurant"
)

// Calculator computes one scenario, satisfied by *engine.Engine.
type Calculator interface {
	Calculate(ctx context.Context, req restaurant.Request) (engine.Result, error)
}

// Entry is the outcome of one successful scenario.
type Entry struct {
	Index            int     `json:"index"`
	SessionID        string  `json:"session_id"`
	SessionName      string  `json:"session_name"`
	StaffCosts       float64 `json:"staff_costs"`
	EquipmentCosts   float64 `json:"equipment_costs"`
	LocationCosts    float64 `json:"location_costs"`
	OperationalCosts float64 `json:"operational_costs"`
	TotalCost        float64 `json:"total_cost"`
}

// Failure is a scenario that did not produce a result.
type Failure struct {
	Index   int         `json:"index"`
	Kind    engine.Kind `json:"error"`
	Message string      `json:"message"`
}

// Best points at the cheapest successful scenario.
type Best struct {
	Index       int     `json:"index"`
	SessionName string  `json:"session_name"`
	TotalCost   float64 `json:"total_cost"`
}

// Report lists results and failures by scenario index. Best is nil when
// every scenario failed.
type Report struct {
	Results []Entry   `json:"results"`
	Best    *Best     `json:"best"`
	Errors  []Failure `json:"errors"`
}

// Runner calculates scenarios on a bounded pool of goroutines.
type Runner struct {
	calc    Calculator
	workers int
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of scenarios calculated at once. Values
// below one mean runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a runner that calculates with calc on
// runtime.GOMAXPROCS(0) workers unless WithWorkers says otherwise.
func NewRunner(calc Calculator, opts ...Option) *Runner {
	r := &Runner{calc: calc, logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Run calculates every scenario. A failing scenario is reported in Errors and
// never stops the others.
func (r *Runner) Run(ctx context.Context, scenarios []restaurant.Request) Report {
	entries := make([]*Entry, len(scenarios))
	failures := make([]*Failure, len(scenarios))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, req := range scenarios {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = failure(i, err)
				return nil
			}

			res, err := r.calc.Calculate(ctx, req)
			if err != nil {
				failures[i] = failure(i, err)
				return nil
			}
			entries[i] = &Entry{
				Index:            i,
				SessionID:        res.SessionID,
				SessionName:      res.SessionName,
				StaffCosts:       res.StaffCosts,
				EquipmentCosts:   res.EquipmentCosts,
				LocationCosts:    res.LocationCosts,
				OperationalCosts: res.OperationalCosts,
				TotalCost:        res.TotalCost,
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: []Entry{}, Errors: []Failure{}}
	for i := range scenarios {
		if e := entries[i]; e != nil {
			report.Results = append(report.Results, *e)
			if report.Best == nil || e.TotalCost < report.Best.TotalCost {
				report.Best = &Best{Index: e.Index, SessionName: e.SessionName, TotalCost: e.TotalCost}
			}
		}
		if f := failures[i]; f != nil {
			report.Errors = append(report.Errors, *f)
		}
	}

	r.logger.Info("compare.completed",
		"scenarios", len(scenarios),
		"succeeded", len(report.Results),
		"failed", len(report.Errors),
		"workers", r.workers,
	)
	return report
}

func failure(index int, err error) *Failure {
	e := engine.Classify(err)
	return &Failure{Index: index, Kind: e.Kind, Message: e.Message}
}
