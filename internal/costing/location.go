package costing

import (
	"context"
	"fmt"

	"github.com/Simplici0/facecost/internal/restaurant"
)

// LocationCalculator prices rent and utilities.
type LocationCalculator struct {
	factors FactorResolver
}

// NewLocationCalculator returns the rent and utilities calculator.
func NewLocationCalculator(resolver FactorResolver) *LocationCalculator {
	return &LocationCalculator{factors: resolver}
}

func (c *LocationCalculator) Category() Category { return CategoryLocation }

func (c *LocationCalculator) Calculate(ctx context.Context, in restaurant.Input) ([]LineItem, error) {
	f, err := c.factors.ResolveBatch(ctx, in.Theme, in.RevenueSize, defaults(CategoryLocation, in))
	if err != nil {
		return nil, fmt.Errorf("resolve location factors: %w", err)
	}

	return []LineItem{
		rentCost(in, f),
		utilitiesCost(in, f),
	}, nil
}

func rentCost(in restaurant.Input, f map[string]float64) LineItem {
	if in.RentPerSqm <= 0 {
		return LineItem{
			Category:    CategoryLocation,
			Subcategory: "rent",
			Amount:      0,
			Formula:     "n/a",
			Details: map[string]any{
				"note":              "no fixed rent",
				"location_rent_sqm": in.RentPerSqm,
			},
		}
	}

	locationFactor := f[FactorRentLocation]
	amount := in.KitchenSizeSqm * in.RentPerSqm * monthsPerYear * locationFactor

	return LineItem{
		Category:    CategoryLocation,
		Subcategory: "rent",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%g m² × %.2f $/m² × %d months × %.2f location",
			in.KitchenSizeSqm, in.RentPerSqm, monthsPerYear, locationFactor),
		Details: map[string]any{
			"kitchen_size_sqm":  in.KitchenSizeSqm,
			"location_rent_sqm": in.RentPerSqm,
			"months":            monthsPerYear,
			"location_factor":   locationFactor,
		},
	}
}

func utilitiesCost(in restaurant.Input, f map[string]float64) LineItem {
	rate := f[FactorUtilitiesRate]
	capacityFactor := 1.0 + float64(in.DailyCapacity)/1000

	amount := in.KitchenSizeSqm * rate * monthsPerYear * capacityFactor

	return LineItem{
		Category:    CategoryLocation,
		Subcategory: "utilities",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%g m² × %.2f $/m² × %d months × %.3f capacity",
			in.KitchenSizeSqm, rate, monthsPerYear, capacityFactor),
		Details: map[string]any{
			"kitchen_size_sqm": in.KitchenSizeSqm,
			"base_rate":        rate,
			"months":           monthsPerYear,
			"daily_capacity":   in.DailyCapacity,
			"capacity_factor":  capacityFactor,
		},
	}
}
