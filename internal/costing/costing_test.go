package costing

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/restaurant"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.011 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func sampleInput() restaurant.Input {
	return restaurant.Input{
		SessionName:        "Restaurant Test",
		Theme:              restaurant.ThemeCasualDining,
		RevenueSize:        restaurant.RevenueMedium,
		KitchenSizeSqm:     100,
		Workstations:       8,
		DailyCapacity:      200,
		StaffCount:         15,
		ExperienceLevel:    restaurant.ExperienceIntermediate,
		TrainingHours:      35,
		EquipmentAgeYears:  2,
		EquipmentCondition: restaurant.ConditionGood,
		EquipmentValue:     120000,
		RentPerSqm:         40,
	}
}

func newTestCalculator(opts ...Option) *Calculator {
	return NewCalculator(factors.NewResolver(factors.NewMemoryStore()), opts...)
}

func itemAmount(t *testing.T, s Summary, category Category, sub string) float64 {
	t.Helper()
	for _, item := range s.Breakdowns {
		if item.Category == category && item.Subcategory == sub {
			return item.Amount
		}
	}
	t.Fatalf("line item %s/%s not found in %+v", category, sub, s.Breakdowns)
	return 0
}

func TestCalculateAll_SampleScenario(t *testing.T) {
	summary, err := newTestCalculator().CalculateAll(context.Background(), sampleInput(), "")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}

	if summary.TotalCost <= 0 {
		t.Fatalf("expected positive total, got %v", summary.TotalCost)
	}
	for name, v := range map[string]float64{
		"staff":      summary.StaffCosts,
		"equipment":  summary.EquipmentCosts,
		"location":   summary.LocationCosts,
		"operations": summary.OperationalCosts,
	} {
		if v <= 0 {
			t.Fatalf("expected positive %s subtotal, got %v", name, v)
		}
	}
	if !summary.Consistent() {
		t.Fatalf("summary total %v does not match subtotals", summary.TotalCost)
	}
	if len(summary.Breakdowns) != 8 {
		t.Fatalf("expected 8 line items, got %d", len(summary.Breakdowns))
	}

	nearlyEqual(t, "training", itemAmount(t, summary, CategoryStaff, "training"), 12600)
	nearlyEqual(t, "salaries", itemAmount(t, summary, CategoryStaff, "salaries"), 525283.2)
	nearlyEqual(t, "depreciation", itemAmount(t, summary, CategoryEquipment, "depreciation"), 20710.08)
	nearlyEqual(t, "maintenance", itemAmount(t, summary, CategoryEquipment, "maintenance"), 10573.5)
	nearlyEqual(t, "rent", itemAmount(t, summary, CategoryLocation, "rent"), 48000)
	nearlyEqual(t, "utilities", itemAmount(t, summary, CategoryLocation, "utilities"), 17280)
	nearlyEqual(t, "food", itemAmount(t, summary, CategoryOperations, "food"), 673882.65)
	nearlyEqual(t, "marketing", itemAmount(t, summary, CategoryOperations, "marketing"), 33582.5)
}

func TestCalculateAll_LineItemOrder(t *testing.T) {
	summary, err := newTestCalculator().CalculateAll(context.Background(), sampleInput(), "")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}

	want := []string{
		"staff/training", "staff/salaries",
		"equipment/depreciation", "equipment/maintenance",
		"location/rent", "location/utilities",
		"operations/food", "operations/marketing",
	}
	for i, item := range summary.Breakdowns {
		if got := string(item.Category) + "/" + item.Subcategory; got != want[i] {
			t.Fatalf("item %d = %s, want %s", i, got, want[i])
		}
		if item.Formula == "" || len(item.Details) == 0 {
			t.Fatalf("item %s has no formula or details", want[i])
		}
	}
}

func TestCalculateAll_IsDeterministic(t *testing.T) {
	calc := newTestCalculator()
	ctx := context.Background()

	first, err := calc.CalculateAll(ctx, sampleInput(), "session-1")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := calc.CalculateAll(ctx, sampleInput(), "session-1")
		if err != nil {
			t.Fatalf("CalculateAll returned error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestCalculateAll_TotalsConsistentForEveryScope(t *testing.T) {
	calc := newTestCalculator()
	for _, theme := range restaurant.Themes {
		for _, size := range restaurant.RevenueSizes {
			in := sampleInput()
			in.Theme = theme
			in.RevenueSize = size

			summary, err := calc.CalculateAll(context.Background(), in, "")
			if err != nil {
				t.Fatalf("%s/%s: CalculateAll returned error: %v", theme, size, err)
			}
			if !summary.Consistent() {
				t.Fatalf("%s/%s: inconsistent summary %+v", theme, size, summary)
			}
			if summary.TotalCost <= 0 {
				t.Fatalf("%s/%s: non-positive total %v", theme, size, summary.TotalCost)
			}
		}
	}
}

func TestCalculateAll_ZeroEquipmentValueSkipsEquipment(t *testing.T) {
	in := sampleInput()
	in.EquipmentValue = 0

	summary, err := newTestCalculator().CalculateAll(context.Background(), in, "")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}

	for _, item := range summary.Breakdowns {
		if item.Category == CategoryEquipment {
			t.Fatalf("unexpected equipment item: %+v", item)
		}
	}
	if summary.EquipmentCosts != 0 {
		t.Fatalf("EquipmentCosts=%v, want 0", summary.EquipmentCosts)
	}
	if len(summary.ByCategory()[CategoryEquipment]) != 0 {
		t.Fatalf("expected empty equipment group")
	}
}

func TestCalculateAll_ZeroRentEmitsNote(t *testing.T) {
	in := sampleInput()
	in.RentPerSqm = 0

	summary, err := newTestCalculator().CalculateAll(context.Background(), in, "")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}

	rent := summary.ByCategory()[CategoryLocation][0]
	if rent.Subcategory != "rent" || rent.Amount != 0 {
		t.Fatalf("unexpected rent item: %+v", rent)
	}
	if rent.Formula != "n/a" || rent.Details["note"] != "no fixed rent" {
		t.Fatalf("expected explanatory note, got %+v", rent)
	}
	if summary.LocationCosts <= 0 {
		t.Fatalf("utilities should still be charged, got %v", summary.LocationCosts)
	}
}

func TestExperienceFactor_StaysWithinBounds(t *testing.T) {
	prev := math.Inf(1)
	for staff := restaurant.MinStaffCount; staff <= restaurant.MaxStaffCount; staff++ {
		f := ExperienceFactor(staff)
		if f > 1.0 || f < 0.7 {
			t.Fatalf("ExperienceFactor(%d)=%v outside [0.7, 1.0]", staff, f)
		}
		if f > prev {
			t.Fatalf("ExperienceFactor(%d)=%v increased from %v", staff, f, prev)
		}
		prev = f
	}
	if ExperienceFactor(5) != 1.0 || ExperienceFactor(1) != 1.0 {
		t.Fatalf("small teams must not get a discount")
	}
	if ExperienceFactor(40) != 0.7 {
		t.Fatalf("ExperienceFactor(40)=%v, want 0.7", ExperienceFactor(40))
	}
}

func TestStepFactors(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"tech age 0", TechFactor(0), 0.9},
		{"tech age 2", TechFactor(2), 0.9},
		{"tech age 5", TechFactor(5), 1.0},
		{"tech age 7", TechFactor(7), 1.16},
		{"tech age 30", TechFactor(30), 1.4},
		{"maintenance age 3", MaintenanceAgeFactor(3), 1.09},
		{"maintenance age 5", MaintenanceAgeFactor(5), 1.25},
		{"volume 50", VolumeFactor(50), 1.02},
		{"volume 100", VolumeFactor(100), 0.97},
		{"volume 200", VolumeFactor(200), 0.93},
		{"volume 500", VolumeFactor(500), 0.88},
		{"maturity 3", MaturityFactor(3), 1.3},
		{"maturity 8", MaturityFactor(8), 1.1},
		{"maturity 9", MaturityFactor(9), 0.95},
		{"waste low load", WasteFactor(5), 1.15},
		{"waste high load", WasteFactor(100), 1.02},
	}
	for _, tc := range cases {
		if math.Abs(tc.got-tc.want) > 1e-9 {
			t.Fatalf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestCalculateAll_FineDiningCostsMoreThanFastFood(t *testing.T) {
	calc := newTestCalculator()
	ctx := context.Background()

	fast := sampleInput()
	fast.SessionName = "Fast Food Scenario"
	fast.Theme = restaurant.ThemeFastFood
	fast.RevenueSize = restaurant.RevenueSmall

	fine := sampleInput()
	fine.SessionName = "Fine Dining Scenario"
	fine.Theme = restaurant.ThemeFineDining
	fine.RevenueSize = restaurant.RevenueLarge

	fastSummary, err := calc.CalculateAll(ctx, fast, "")
	if err != nil {
		t.Fatalf("fast food: %v", err)
	}
	fineSummary, err := calc.CalculateAll(ctx, fine, "")
	if err != nil {
		t.Fatalf("fine dining: %v", err)
	}

	if fineSummary.StaffCosts <= fastSummary.StaffCosts {
		t.Fatalf("fine dining staff %v should exceed fast food %v", fineSummary.StaffCosts, fastSummary.StaffCosts)
	}
	if fineSummary.OperationalCosts <= fastSummary.OperationalCosts {
		t.Fatalf("fine dining operations %v should exceed fast food %v", fineSummary.OperationalCosts, fastSummary.OperationalCosts)
	}
}

func TestCalculateAll_SeededStoreMatchesBuiltinTables(t *testing.T) {
	ctx := context.Background()
	unseeded := newTestCalculator()
	seeded := NewCalculator(factors.NewResolver(factors.NewMemoryStore(BuiltinFactors()...)))

	for _, theme := range restaurant.Themes {
		for _, size := range restaurant.RevenueSizes {
			for _, cond := range restaurant.Conditions {
				in := sampleInput()
				in.Theme, in.RevenueSize, in.EquipmentCondition = theme, size, cond

				a, err := unseeded.CalculateAll(ctx, in, "")
				if err != nil {
					t.Fatalf("unseeded: %v", err)
				}
				b, err := seeded.CalculateAll(ctx, in, "")
				if err != nil {
					t.Fatalf("seeded: %v", err)
				}
				if !reflect.DeepEqual(a, b) {
					t.Fatalf("%s/%s/%s: seeded result differs:\n%+v\n%+v", theme, size, cond, a, b)
				}
			}
		}
	}
}

func TestCalculateAll_StoredFactorOverridesBuiltin(t *testing.T) {
	store := factors.NewMemoryStore()
	store.Put(factors.CostFactor{Name: FactorTrainingRate, Theme: restaurant.ThemeCasualDining, BaseCost: 60, Multiplier: 1, Active: true})

	summary, err := NewCalculator(factors.NewResolver(store)).CalculateAll(context.Background(), sampleInput(), "")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}
	nearlyEqual(t, "training", itemAmount(t, summary, CategoryStaff, "training"), 25200)
}

type brokenStore struct{}

func (brokenStore) Lookup(_ context.Context, key factors.Key) (float64, bool, error) {
	return 0, false, &factors.StoreError{Op: "lookup", Key: key, Err: errors.New("no such table: cost_factors")}
}

func TestCalculateAll_StoreFailureAborts(t *testing.T) {
	recorder := &fakeRecorder{}
	calc := NewCalculator(factors.NewResolver(brokenStore{}), WithRecorder(recorder))

	summary, err := calc.CalculateAll(context.Background(), sampleInput(), "session-1")
	if err == nil {
		t.Fatalf("expected store error")
	}
	var serr *factors.StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *factors.StoreError, got %T: %v", err, err)
	}
	if !reflect.DeepEqual(summary, Summary{}) {
		t.Fatalf("expected no partial summary, got %+v", summary)
	}
	if recorder.calls != 0 {
		t.Fatalf("nothing should be persisted after a store failure")
	}
}

type fakeRecorder struct {
	calls     int
	sessionID string
	items     []LineItem
	err       error
}

func (r *fakeRecorder) SaveLineItems(_ context.Context, sessionID string, items []LineItem) error {
	r.calls++
	r.sessionID = sessionID
	r.items = items
	return r.err
}

func TestCalculateAll_RecordsLineItemsForSession(t *testing.T) {
	recorder := &fakeRecorder{}
	calc := newTestCalculator(WithRecorder(recorder))

	summary, err := calc.CalculateAll(context.Background(), sampleInput(), "abc")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}
	if recorder.calls != 1 || recorder.sessionID != "abc" || len(recorder.items) != len(summary.Breakdowns) {
		t.Fatalf("unexpected recorder state: %+v", recorder)
	}

	if _, err := calc.CalculateAll(context.Background(), sampleInput(), ""); err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}
	if recorder.calls != 1 {
		t.Fatalf("calculations without a session must not be recorded")
	}
}

func TestCalculateAll_RecorderFailureIsNotFatal(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("disk full")}
	calc := newTestCalculator(WithRecorder(recorder))

	summary, err := calc.CalculateAll(context.Background(), sampleInput(), "abc")
	if err != nil {
		t.Fatalf("CalculateAll returned error: %v", err)
	}
	if summary.TotalCost <= 0 || recorder.calls != 1 {
		t.Fatalf("expected a full summary despite persistence failure: %+v", summary)
	}
}

func TestBuiltinFactors_CoverEveryScope(t *testing.T) {
	rows := BuiltinFactors()
	seen := make(map[factors.Key]bool, len(rows))
	for _, row := range rows {
		if seen[row.Key()] {
			t.Fatalf("duplicate builtin factor %s", row.Key())
		}
		seen[row.Key()] = true
		if row.Value() <= 0 {
			t.Fatalf("builtin factor %s has non-positive value", row.Key())
		}
	}

	if !seen[factors.Key{Name: FactorTrainingRate, Theme: restaurant.ThemeCasualDining}] {
		t.Fatalf("missing themed training rate")
	}
	if !seen[factors.Key{Name: FactorMarketingBudget, RevenueSize: restaurant.RevenueEnterprise}] {
		t.Fatalf("missing revenue-scoped marketing budget")
	}
	if !seen[factors.Key{Name: FactorConditionPrefix + "poor"}] {
		t.Fatalf("missing condition factor")
	}
}
