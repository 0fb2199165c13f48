package costing

import (
	"context"
	"fmt"
	"math"

	"github.com/Simplici0/facecost/internal/restaurant"
)

const (
	hoursPerWeek  = 40
	weeksPerYear  = 52
	monthsPerYear = 12
)

// StaffCalculator prices training and salaries.
type StaffCalculator struct {
	factors FactorResolver
}

// NewStaffCalculator returns the training and salaries calculator.
func NewStaffCalculator(resolver FactorResolver) *StaffCalculator {
	return &StaffCalculator{factors: resolver}
}

func (c *StaffCalculator) Category() Category { return CategoryStaff }

func (c *StaffCalculator) Calculate(ctx context.Context, in restaurant.Input) ([]LineItem, error) {
	f, err := c.factors.ResolveBatch(ctx, in.Theme, in.RevenueSize, defaults(CategoryStaff, in))
	if err != nil {
		return nil, fmt.Errorf("resolve staff factors: %w", err)
	}

	return []LineItem{
		trainingCost(in, f),
		salaryCost(in, f),
	}, nil
}

// ExperienceFactor is the scale-economy discount on training: 2% per employee
// above five, never more than 30%.
func ExperienceFactor(staffCount int) float64 {
	return clamp(1.0-float64(staffCount-5)*0.02, 0.7, 1.0)
}

func trainingCost(in restaurant.Input, f map[string]float64) LineItem {
	rate := f[FactorTrainingRate]
	complexity := f[FactorTrainingComplexity]
	size := f[FactorTrainingSize]
	weightedRate := rate * complexity * size
	experience := ExperienceFactor(in.StaffCount)

	amount := float64(in.TrainingHours) * float64(in.StaffCount) * weightedRate * experience

	return LineItem{
		Category:    CategoryStaff,
		Subcategory: "training",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%d h × %d staff × %.2f $/h (%.2f × %.2f × %.2f) × %.3f experience",
			in.TrainingHours, in.StaffCount, weightedRate, rate, complexity, size, experience),
		Details: map[string]any{
			"training_hours":    in.TrainingHours,
			"staff_count":       in.StaffCount,
			"base_hourly_rate":  rate,
			"complexity_factor": complexity,
			"size_factor":       size,
			"weighted_rate":     weightedRate,
			"experience_factor": experience,
			"experience_level":  string(in.ExperienceLevel),
			"restaurant_theme":  string(in.Theme),
			"revenue_size":      string(in.RevenueSize),
		},
	}
}

func salaryCost(in restaurant.Input, f map[string]float64) LineItem {
	wage := f[FactorBaseHourlyWage]
	baseSalary := wage * hoursPerWeek * weeksPerYear
	themeMult := f[FactorSalaryTheme]
	revenueMult := f[FactorSalaryRevenue]
	locationMult := math.Min(1.3, 0.9+in.Density()*0.01)
	performanceMult := clamp(0.95+in.CoversPerStaff()*0.005, 0.9, 1.2)

	amount := float64(in.StaffCount) * baseSalary * themeMult * revenueMult * locationMult * performanceMult

	return LineItem{
		Category:    CategoryStaff,
		Subcategory: "salaries",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%d staff × %.2f $/year × %.2f theme × %.2f revenue × %.3f location × %.3f performance",
			in.StaffCount, baseSalary, themeMult, revenueMult, locationMult, performanceMult),
		Details: map[string]any{
			"staff_count":            in.StaffCount,
			"base_hourly_wage":       wage,
			"base_annual_salary":     baseSalary,
			"theme_multiplier":       themeMult,
			"revenue_multiplier":     revenueMult,
			"location_multiplier":    locationMult,
			"performance_multiplier": performanceMult,
		},
	}
}
