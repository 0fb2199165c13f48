// Package engine is the request boundary of the cost estimator: it validates
// a raw request, opens a session, runs the calculation and shapes the result
// payload. Every failure comes back as an *Error.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/logger"
	"github.com/Simplici0/facecost/internal/restaurant"
)

// Result is the payload of a successful calculation.
type Result struct {
	costing.Summary
	ValidationPassed bool      `json:"validation_passed"`
	CalculatedAt     time.Time `json:"calculated_at"`
}

// ValidationIssue is one violated input rule.
type ValidationIssue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationReport is the outcome of a dry validation.
type ValidationReport struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationIssue `json:"errors"`
	Summary map[string]string `json:"summary"`
}

// SessionStore opens a persisted session for a validated input and drops it
// again when the calculation fails.
type SessionStore interface {
	CreateSession(ctx context.Context, in restaurant.Input) (string, error)
	DeleteSession(ctx context.Context, id string) error
}

// Calculator is the aggregation step, satisfied by *costing.Calculator.
type Calculator interface {
	CalculateAll(ctx context.Context, in restaurant.Input, sessionID string) (costing.Summary, error)
}

// Engine runs calculation requests end to end. It is safe for concurrent use.
type Engine struct {
	calc     Calculator
	sessions SessionStore
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSessions persists a session per calculation. Without it, session ids
// are generated and nothing is stored.
func WithSessions(s SessionStore) Option {
	return func(e *Engine) { e.sessions = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces time.Now for the calculated_at stamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an engine that calculates with calc.
func New(calc Calculator, opts ...Option) *Engine {
	e := &Engine{
		calc:   calc,
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate validates req and computes its cost summary. Validation runs
// before anything is stored or calculated.
func (e *Engine) Calculate(ctx context.Context, req restaurant.Request) (res Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			e.logger.Error("engine.panic", "panic", v)
			res, err = Result{}, panicError(v)
		}
	}()

	in, err := restaurant.Validate(req)
	if err != nil {
		e.logger.Info("engine.rejected", "session_name", req.SessionName, "error", err)
		return Result{}, Classify(err)
	}

	start := e.now()
	sessionID, persisted := e.openSession(ctx, in)

	recordID := ""
	if persisted {
		recordID = sessionID
	}
	summary, err := e.calc.CalculateAll(ctx, in, recordID)
	if err != nil {
		e.logger.Error("engine.failed", "session_id", sessionID, "error", err)
		if persisted {
			e.dropSession(ctx, sessionID)
		}
		return Result{}, Classify(err)
	}
	summary.SessionID = sessionID

	res = Result{
		Summary:          summary,
		ValidationPassed: summary.Consistent(),
		CalculatedAt:     e.now().UTC(),
	}
	if !res.ValidationPassed {
		e.logger.Warn("engine.inconsistent_total", "session_id", sessionID, "total_cost", summary.TotalCost)
	}

	e.logger.Info("engine.calculated",
		"session_id", sessionID,
		"total_cost", summary.TotalCost,
		"duration_ms", e.now().Sub(start).Milliseconds(),
	)
	return res, nil
}

// openSession returns the session id for a calculation and whether it was
// stored. A storage failure is logged and the calculation goes on unrecorded.
func (e *Engine) openSession(ctx context.Context, in restaurant.Input) (string, bool) {
	if e.sessions == nil {
		return uuid.NewString(), false
	}
	id, err := e.sessions.CreateSession(ctx, in)
	if err != nil {
		e.logger.Warn("engine.session_failed", "session_name", in.SessionName, "error", err)
		return uuid.NewString(), false
	}
	return id, true
}

// dropSession removes a session whose calculation failed, so an aborted
// request leaves nothing behind.
func (e *Engine) dropSession(ctx context.Context, id string) {
	if err := e.sessions.DeleteSession(context.WithoutCancel(ctx), id); err != nil {
		e.logger.Warn("engine.session_cleanup_failed", "session_id", id, "error", err)
	}
}

// Validate checks req without calculating. The summary is only set for a
// valid request.
func (e *Engine) Validate(req restaurant.Request) ValidationReport {
	in, err := restaurant.Validate(req)
	if err == nil {
		return ValidationReport{IsValid: true, Errors: []ValidationIssue{}, Summary: restaurant.Describe(in)}
	}

	issue := ValidationIssue{Message: err.Error()}
	var verr *restaurant.ValidationError
	if errors.As(err, &verr) {
		issue = ValidationIssue{Field: verr.Field, Rule: verr.Rule, Message: verr.Message}
	}
	return ValidationReport{IsValid: false, Errors: []ValidationIssue{issue}}
}

// Summarize returns the human-readable overview of a valid request.
func (e *Engine) Summarize(req restaurant.Request) (map[string]string, error) {
	in, err := restaurant.Validate(req)
	if err != nil {
		return nil, Classify(err)
	}
	return restaurant.Describe(in), nil
}
