package compare

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/restaurant"
)

func scenario(name, theme, size string) restaurant.Request {
	return restaurant.Request{
		SessionName:          name,
		RestaurantTheme:      theme,
		RevenueSize:          size,
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

func newEngine() *engine.Engine {
	return engine.New(costing.NewCalculator(factors.NewResolver(factors.NewMemoryStore())))
}

func TestRun_PicksCheapestAndKeepsOrder(t *testing.T) {
	scenarios := []restaurant.Request{
		scenario("Fine Dining", "fine_dining", "large"),
		scenario("Food Truck", "food_truck", "small"),
		scenario("Casual", "casual_dining", "medium"),
	}

	report := NewRunner(newEngine(), WithWorkers(2)).Run(context.Background(), scenarios)

	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", report.Errors)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	for i, r := range report.Results {
		if r.Index != i || r.SessionName != scenarios[i].SessionName {
			t.Fatalf("result %d = %+v", i, r)
		}
	}

	cheapest := report.Results[0]
	for _, r := range report.Results[1:] {
		if r.TotalCost < cheapest.TotalCost {
			cheapest = r
		}
	}
	if report.Best == nil || report.Best.Index != cheapest.Index || report.Best.TotalCost != cheapest.TotalCost {
		t.Fatalf("best=%+v, want index %d", report.Best, cheapest.Index)
	}
	if report.Best.SessionName != "Food Truck" {
		t.Fatalf("expected the food truck to be cheapest, got %+v", report.Best)
	}
}

func TestRun_FailuresDoNotAbortSiblings(t *testing.T) {
	invalid := scenario("Too Many Staff", "casual_dining", "medium")
	invalid.StaffCount = 150

	unknown := scenario("Unknown Theme", "diner", "medium")

	scenarios := []restaurant.Request{
		scenario("Casual", "casual_dining", "medium"),
		invalid,
		scenario("Cloud", "cloud_kitchen", "small"),
		unknown,
	}

	report := NewRunner(newEngine(), WithWorkers(4)).Run(context.Background(), scenarios)

	if len(report.Results) != 2 || report.Results[0].Index != 0 || report.Results[1].Index != 2 {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("expected 2 failures, got %+v", report.Errors)
	}
	for i, wantIndex := range []int{1, 3} {
		f := report.Errors[i]
		if f.Index != wantIndex || f.Kind != engine.KindValidation || f.Message == "" {
			t.Fatalf("failure %d = %+v", i, f)
		}
	}
	if report.Best == nil {
		t.Fatalf("expected a best scenario")
	}
}

func TestRun_AllFailedHasNoBest(t *testing.T) {
	bad := scenario("x", "casual_dining", "medium")

	report := NewRunner(newEngine()).Run(context.Background(), []restaurant.Request{bad})
	if report.Best != nil || len(report.Results) != 0 || len(report.Errors) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	report := NewRunner(newEngine()).Run(context.Background(), nil)
	if report.Best != nil || report.Results == nil || report.Errors == nil {
		t.Fatalf("expected empty, non-nil lists: %+v", report)
	}
}

type slowCalculator struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int32
}

func (c *slowCalculator) Calculate(_ context.Context, req restaurant.Request) (engine.Result, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()

	return engine.Result{Summary: costing.Summary{SessionName: req.SessionName, TotalCost: 1}}, nil
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	calc := &slowCalculator{}
	scenarios := make([]restaurant.Request, 12)
	for i := range scenarios {
		scenarios[i] = scenario("Scenario", "casual_dining", "medium")
	}

	report := NewRunner(calc, WithWorkers(3)).Run(context.Background(), scenarios)

	if int(calc.calls.Load()) != len(scenarios) || len(report.Results) != len(scenarios) {
		t.Fatalf("expected every scenario to run, got %d calls", calc.calls.Load())
	}
	if calc.peak > 3 {
		t.Fatalf("peak concurrency %d exceeds limit 3", calc.peak)
	}
	if report.Best.Index != 0 {
		t.Fatalf("ties should go to the first scenario, got %+v", report.Best)
	}
}

func TestRun_CanceledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewRunner(newEngine(), WithWorkers(1)).Run(ctx, []restaurant.Request{
		scenario("Casual", "casual_dining", "medium"),
		scenario("Cloud", "cloud_kitchen", "small"),
	})
	if len(report.Errors) != 2 || len(report.Results) != 0 {
		t.Fatalf("expected every scenario to fail, got %+v", report)
	}
}
