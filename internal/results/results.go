// Package results persists calculation sessions and their line items.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/restaurant"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Session is one stored calculation request.
type Session struct {
	ID          string `db:"id" json:"id"`
	SessionName string `db:"session_name" json:"session_name"`
	Theme       string `db:"restaurant_theme" json:"restaurant_theme"`
	RevenueSize string `db:"revenue_size" json:"revenue_size"`
	InputsJSON  string `db:"inputs_json" json:"-"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// Input decodes the validated input stored with the session.
func (s Session) Input() (restaurant.Input, error) {
	var in restaurant.Input
	if err := json.Unmarshal([]byte(s.InputsJSON), &in); err != nil {
		return restaurant.Input{}, fmt.Errorf("decode session %s inputs: %w", s.ID, err)
	}
	return in, nil
}

// StoredItem is a persisted line item.
type StoredItem struct {
	ID          int64   `db:"id" json:"id"`
	SessionID   string  `db:"session_id" json:"session_id"`
	LineNo      int     `db:"line_no" json:"line_no"`
	Category    string  `db:"category" json:"category"`
	Subcategory string  `db:"subcategory" json:"subcategory"`
	Amount      float64 `db:"amount" json:"amount"`
	Formula     string  `db:"formula" json:"formula"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

// Repository stores sessions and line items. It implements costing.Recorder.
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a repository backed by db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var _ costing.Recorder = (*Repository)(nil)

// CreateSession stores in under a new session id and returns the id.
func (r *Repository) CreateSession(ctx context.Context, in restaurant.Input) (string, error) {
	inputs, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode session inputs: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions (id, session_name, restaurant_theme, revenue_size, inputs_json)
		VALUES (?, ?, ?, ?, ?)
	`), id, in.SessionName, string(in.Theme), string(in.RevenueSize), string(inputs)); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	return id, nil
}

// DeleteSession removes a session and any line items stored for it.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin results transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM calculation_results WHERE session_id = ?`), id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear session %s results: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results transaction: %w", err)
	}
	return nil
}

// GetSession returns the stored session with the given id, or
// ErrSessionNotFound.
func (r *Repository) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	err := sqlx.GetContext(ctx, r.db, &s, r.db.Rebind(`
		SELECT id, session_name, restaurant_theme, revenue_size, inputs_json, created_at
		FROM sessions
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session %s: %w", id, err)
	}
	return s, nil
}

// SaveLineItems replaces the stored line items of a session in one
// transaction.
func (r *Repository) SaveLineItems(ctx context.Context, sessionID string, items []costing.LineItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin results transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM calculation_results WHERE session_id = ?`), sessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear session %s results: %w", sessionID, err)
	}

	insert := tx.Rebind(`
		INSERT INTO calculation_results (session_id, line_no, category, subcategory, amount, formula)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, insert, sessionID, i+1, string(item.Category), item.Subcategory, item.Amount, item.Formula); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert result %s/%s: %w", item.Category, item.Subcategory, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results transaction: %w", err)
	}
	return nil
}

// ListItems returns the stored line items of a session in calculation order.
func (r *Repository) ListItems(ctx context.Context, sessionID string) ([]StoredItem, error) {
	items := make([]StoredItem, 0)
	if err := sqlx.SelectContext(ctx, r.db, &items, r.db.Rebind(`
		SELECT id, session_id, line_no, category, subcategory, amount, formula, created_at
		FROM calculation_results
		WHERE session_id = ?
		ORDER BY line_no
	`), sessionID); err != nil {
		return nil, fmt.Errorf("query session %s results: %w", sessionID, err)
	}
	return items, nil
}
