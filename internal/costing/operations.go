package costing

import (
	"context"
	"fmt"

	"github.com/Simplici0/facecost/internal/restaurant"
)

// OperationsCalculator prices food and marketing.
type OperationsCalculator struct {
	factors FactorResolver
}

// NewOperationsCalculator returns the food and marketing calculator.
func NewOperationsCalculator(resolver FactorResolver) *OperationsCalculator {
	return &OperationsCalculator{factors: resolver}
}

func (c *OperationsCalculator) Category() Category { return CategoryOperations }

func (c *OperationsCalculator) Calculate(ctx context.Context, in restaurant.Input) ([]LineItem, error) {
	f, err := c.factors.ResolveBatch(ctx, in.Theme, in.RevenueSize, defaults(CategoryOperations, in))
	if err != nil {
		return nil, fmt.Errorf("resolve operations factors: %w", err)
	}

	return []LineItem{
		foodCost(in, f),
		marketingCost(in, f),
	}, nil
}

// VolumeFactor is the purchasing discount earned by daily volume.
func VolumeFactor(dailyCapacity int) float64 {
	switch {
	case dailyCapacity >= 500:
		return 0.88
	case dailyCapacity >= 200:
		return 0.93
	case dailyCapacity >= 100:
		return 0.97
	default:
		return 1.02
	}
}

// WasteFactor shrinks as each employee handles more covers.
func WasteFactor(coversPerStaff float64) float64 {
	return clamp(1.25-coversPerStaff*0.01, 1.02, 1.15)
}

// MaturityFactor is the marketing effort of a young, small team compared to
// an established one.
func MaturityFactor(staffCount int) float64 {
	switch {
	case staffCount <= 3:
		return 1.3
	case staffCount <= 8:
		return 1.1
	default:
		return 0.95
	}
}

func foodCost(in restaurant.Input, f map[string]float64) LineItem {
	days := f[FactorOperatingDays]
	baseCost := f[FactorFoodCostPerCover]
	quality := f[FactorFoodQuality]
	season := f[FactorSeasonal]
	waste := WasteFactor(in.CoversPerStaff())
	costPerCover := baseCost * quality * season * waste
	efficiency := f[FactorKitchenEfficiency]
	volume := VolumeFactor(in.DailyCapacity)

	amount := float64(in.DailyCapacity) * days * costPerCover * efficiency * volume

	return LineItem{
		Category:    CategoryOperations,
		Subcategory: "food",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%d covers × %.0f days × %.3f $/cover (%.2f × %.2f × %.2f × %.3f) × %.2f efficiency × %.2f volume",
			in.DailyCapacity, days, costPerCover, baseCost, quality, season, waste, efficiency, volume),
		Details: map[string]any{
			"daily_capacity":           in.DailyCapacity,
			"operating_days":           days,
			"base_cost_per_cover":      baseCost,
			"quality_factor":           quality,
			"seasonal_factor":          season,
			"waste_factor":             waste,
			"effective_cost_per_cover": costPerCover,
			"efficiency_factor":        efficiency,
			"volume_factor":            volume,
		},
	}
}

func marketingCost(in restaurant.Input, f map[string]float64) LineItem {
	budget := f[FactorMarketingBudget]
	themeFactor := f[FactorMarketingTheme]
	density := in.Density()
	competition := clamp(0.9+density*0.05, 0.9, 1.3)
	digital := f[FactorDigitalMarketing]
	maturity := MaturityFactor(in.StaffCount)
	location := clamp(0.95+density*0.03, 0.95, 1.25)

	amount := budget * themeFactor * competition * digital * maturity * location

	return LineItem{
		Category:    CategoryOperations,
		Subcategory: "marketing",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%.2f $ × %.2f theme × %.3f competition × %.2f digital × %.2f maturity × %.3f location",
			budget, themeFactor, competition, digital, maturity, location),
		Details: map[string]any{
			"base_budget":        budget,
			"theme_factor":       themeFactor,
			"competition_factor": competition,
			"digital_factor":     digital,
			"maturity_factor":    maturity,
			"location_factor":    location,
			"density":            density,
		},
	}
}
