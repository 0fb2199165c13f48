package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/db"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/migrations"
	"github.com/Simplici0/facecost/internal/restaurant"
	"github.com/Simplici0/facecost/internal/results"
)

func sampleRequest() restaurant.Request {
	return restaurant.Request{
		SessionName:          "Restaurant Test",
		RestaurantTheme:      "casual_dining",
		RevenueSize:          "medium",
		KitchenSizeSqm:       100,
		KitchenWorkstations:  8,
		DailyCapacity:        200,
		StaffCount:           15,
		StaffExperienceLevel: "intermediate",
		TrainingHoursNeeded:  35,
		EquipmentAgeYears:    2,
		EquipmentCondition:   "good",
		EquipmentValue:       120000,
		LocationRentSqm:      40,
	}
}

func newCalculator(opts ...costing.Option) *costing.Calculator {
	return costing.NewCalculator(factors.NewResolver(factors.NewMemoryStore()), opts...)
}

type fakeSessions struct {
	calls   int
	err     error
	deleted []string
}

func (s *fakeSessions) CreateSession(_ context.Context, _ restaurant.Input) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("session-%d", s.calls), nil
}

func (s *fakeSessions) DeleteSession(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestCalculate_SampleScenario(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	e := New(newCalculator(), WithClock(func() time.Time { return fixed }))

	res, err := e.Calculate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if res.TotalCost <= 0 || !res.ValidationPassed {
		t.Fatalf("unexpected result: total=%v validation_passed=%v", res.TotalCost, res.ValidationPassed)
	}
	if res.StaffCosts <= 0 || res.EquipmentCosts <= 0 || res.LocationCosts <= 0 || res.OperationalCosts <= 0 {
		t.Fatalf("expected four positive subtotals: %+v", res.Summary)
	}
	if len(res.SessionID) != 36 {
		t.Fatalf("expected generated uuid session id, got %q", res.SessionID)
	}
	if res.SessionName != "Restaurant Test" {
		t.Fatalf("SessionName=%q", res.SessionName)
	}
	if !res.CalculatedAt.Equal(fixed) || res.CalculatedAt.Location() != time.UTC {
		t.Fatalf("CalculatedAt=%v, want %v in UTC", res.CalculatedAt, fixed)
	}
}

func TestCalculate_PayloadShape(t *testing.T) {
	res, err := New(newCalculator()).Calculate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	for _, key := range []string{
		"session_id", "session_name", "staff_costs", "equipment_costs", "location_costs",
		"operational_costs", "total_cost", "cost_breakdowns", "validation_passed", "calculated_at",
	} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("payload is missing %q: %s", key, raw)
		}
	}
	items, _ := payload["cost_breakdowns"].([]any)
	if len(items) != 8 {
		t.Fatalf("expected 8 breakdown items, got %d", len(items))
	}
	first, _ := items[0].(map[string]any)
	for _, key := range []string{"category", "subcategory", "amount", "formula", "details"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("breakdown item is missing %q", key)
		}
	}
}

func TestCalculate_ValidationFailsBeforeAnySideEffect(t *testing.T) {
	sessions := &fakeSessions{}
	e := New(newCalculator(), WithSessions(sessions))

	req := sampleRequest()
	req.StaffCount = 100 // 2 covers per employee

	_, err := e.Calculate(context.Background(), req)
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if !errors.Is(err, restaurant.ErrInvalidInput) {
		t.Fatalf("expected error to wrap ErrInvalidInput, got %v", err)
	}
	details, _ := Classify(err).Details.(map[string]string)
	if details["field"] != "staff_count" || details["rule"] != "covers_per_staff" {
		t.Fatalf("unexpected details: %v", details)
	}
	if sessions.calls != 0 {
		t.Fatalf("no session should be opened for an invalid request")
	}
}

type brokenStore struct{}

func (brokenStore) Lookup(_ context.Context, key factors.Key) (float64, bool, error) {
	return 0, false, &factors.StoreError{Op: "lookup", Key: key, Err: errors.New("database is locked")}
}

func TestCalculate_StoreFailureIsCalculationError(t *testing.T) {
	e := New(costing.NewCalculator(factors.NewResolver(brokenStore{})))

	res, err := e.Calculate(context.Background(), sampleRequest())
	if !IsKind(err, KindCalculation) {
		t.Fatalf("expected calculation_error, got %v", err)
	}
	if res.TotalCost != 0 || len(res.Breakdowns) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestCalculate_StoreFailureLeavesNoSession(t *testing.T) {
	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "engine-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()
	if err := migrations.Up(database.DB, db.DriverSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	repo := results.NewRepository(database)
	calc := costing.NewCalculator(factors.NewResolver(brokenStore{}), costing.WithRecorder(repo))
	e := New(calc, WithSessions(repo))

	if _, err := e.Calculate(context.Background(), sampleRequest()); !IsKind(err, KindCalculation) {
		t.Fatalf("expected calculation_error, got %v", err)
	}

	var sessions int
	if err := database.Get(&sessions, `SELECT COUNT(*) FROM sessions`); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if sessions != 0 {
		t.Fatalf("failed calculation left %d sessions behind", sessions)
	}
}

func TestCalculate_StoreFailureDropsOpenedSession(t *testing.T) {
	sessions := &fakeSessions{}
	e := New(costing.NewCalculator(factors.NewResolver(brokenStore{})), WithSessions(sessions))

	if _, err := e.Calculate(context.Background(), sampleRequest()); err == nil {
		t.Fatalf("expected an error")
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "session-1" {
		t.Fatalf("expected session-1 to be dropped, got %v", sessions.deleted)
	}
}

func TestCalculate_SessionFailureIsNotFatal(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("read-only database")}
	e := New(newCalculator(), WithSessions(sessions))

	res, err := e.Calculate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if sessions.calls != 1 || res.SessionID == "" || res.TotalCost <= 0 {
		t.Fatalf("unexpected result: %+v", res.Summary)
	}
}

type panickingCalculator struct{}

func (panickingCalculator) CalculateAll(context.Context, restaurant.Input, string) (costing.Summary, error) {
	panic("division by zero")
}

func TestCalculate_RecoversPanics(t *testing.T) {
	_, err := New(panickingCalculator{}).Calculate(context.Background(), sampleRequest())
	if !IsKind(err, KindUnexpected) {
		t.Fatalf("expected unexpected_error, got %v", err)
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Fatalf("panic value missing from %q", err.Error())
	}
}

func TestCalculate_PersistsSessionAndItems(t *testing.T) {
	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "engine-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()
	if err := migrations.Up(database.DB, db.DriverSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	repo := results.NewRepository(database)
	e := New(newCalculator(costing.WithRecorder(repo)), WithSessions(repo))

	res, err := e.Calculate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if _, err := repo.GetSession(context.Background(), res.SessionID); err != nil {
		t.Fatalf("session %s not stored: %v", res.SessionID, err)
	}
	items, err := repo.ListItems(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != len(res.Breakdowns) {
		t.Fatalf("stored %d items, want %d", len(items), len(res.Breakdowns))
	}
}

func TestValidate_Report(t *testing.T) {
	e := New(newCalculator())

	report := e.Validate(sampleRequest())
	if !report.IsValid || len(report.Errors) != 0 || report.Summary["type"] != "Casual Dining (medium)" {
		t.Fatalf("unexpected report for valid request: %+v", report)
	}

	bad := sampleRequest()
	bad.RestaurantTheme = "diner"
	report = e.Validate(bad)
	if report.IsValid || report.Summary != nil || len(report.Errors) != 1 {
		t.Fatalf("unexpected report for invalid request: %+v", report)
	}
	if report.Errors[0].Field != "restaurant_theme" || report.Errors[0].Rule != "enum" {
		t.Fatalf("unexpected issue: %+v", report.Errors[0])
	}
}

func TestSummarize(t *testing.T) {
	e := New(newCalculator())

	summary, err := e.Summarize(sampleRequest())
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary["staff"] != "15 employees (intermediate)" {
		t.Fatalf("staff=%q", summary["staff"])
	}

	bad := sampleRequest()
	bad.SessionName = ""
	if _, err := e.Summarize(bad); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	_, openErr := os.Open(filepath.Join(t.TempDir(), "missing.json"))
	var syntaxTarget map[string]any
	syntaxErr := json.Unmarshal([]byte(`{"session_name":`), &syntaxTarget)
	var req restaurant.Request
	typeErr := json.Unmarshal([]byte(`{"staff_count":"many"}`), &req)

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"missing file", fmt.Errorf("read input: %w", openErr), KindFileNotFound},
		{"wrapped fs error", fs.ErrNotExist, KindFileNotFound},
		{"json syntax", syntaxErr, KindDecode},
		{"json type", typeErr, KindDecode},
		{"other", errors.New("boom"), KindCalculation},
		{"tagged", &Error{Kind: KindUnexpected, Message: "x"}, KindUnexpected},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got.Kind != tc.want {
			t.Fatalf("%s: kind=%s, want %s", tc.name, got.Kind, tc.want)
		}
	}
	if Classify(nil) != nil {
		t.Fatalf("Classify(nil) should be nil")
	}
}
