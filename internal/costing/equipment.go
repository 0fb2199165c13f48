package costing

import (
	"context"
	"fmt"
	"math"

	"github.com/Simplici0/facecost/internal/restaurant"
)

// EquipmentCalculator prices depreciation and maintenance. It produces no
// items when the equipment has no value.
type EquipmentCalculator struct {
	factors FactorResolver
}

// NewEquipmentCalculator returns the depreciation and maintenance calculator.
func NewEquipmentCalculator(resolver FactorResolver) *EquipmentCalculator {
	return &EquipmentCalculator{factors: resolver}
}

func (c *EquipmentCalculator) Category() Category { return CategoryEquipment }

func (c *EquipmentCalculator) Calculate(ctx context.Context, in restaurant.Input) ([]LineItem, error) {
	if in.EquipmentValue <= 0 {
		return []LineItem{}, nil
	}

	f, err := c.factors.ResolveBatch(ctx, in.Theme, in.RevenueSize, defaults(CategoryEquipment, in))
	if err != nil {
		return nil, fmt.Errorf("resolve equipment factors: %w", err)
	}

	return []LineItem{
		depreciationCost(in, f),
		maintenanceCost(in, f),
	}, nil
}

// TechFactor accounts for technological obsolescence: recent equipment is
// discounted, equipment older than five years costs 8% more per year, up to 40%.
func TechFactor(ageYears int) float64 {
	switch {
	case ageYears <= 2:
		return 0.9
	case ageYears <= 5:
		return 1.0
	default:
		return math.Min(1.4, 1.0+float64(ageYears-5)*0.08)
	}
}

// MaintenanceAgeFactor grows 3% per year for the first three years and 8% per
// year after that.
func MaintenanceAgeFactor(ageYears int) float64 {
	if ageYears <= 3 {
		return 1.0 + float64(ageYears)*0.03
	}
	return 1.09 + float64(ageYears-3)*0.08
}

func depreciationCost(in restaurant.Input, f map[string]float64) LineItem {
	conditionBase := f[FactorConditionPrefix+string(in.EquipmentCondition)]
	conditionFactor := conditionBase + math.Min(0.15, float64(in.EquipmentAgeYears)*0.01)
	baseRate := f[FactorDepreciationRate]
	usage := clamp(0.9+in.Density()*0.02, 0.8, 1.5)
	themeFactor := f[FactorEquipmentTheme]
	tech := TechFactor(in.EquipmentAgeYears)
	effectiveRate := baseRate * usage * themeFactor * tech

	amount := in.EquipmentValue * conditionFactor * effectiveRate

	return LineItem{
		Category:    CategoryEquipment,
		Subcategory: "depreciation",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%.2f $ × %.3f condition × %.4f rate (%.2f × %.3f usage × %.2f theme × %.2f tech)",
			in.EquipmentValue, conditionFactor, effectiveRate, baseRate, usage, themeFactor, tech),
		Details: map[string]any{
			"equipment_value":     in.EquipmentValue,
			"equipment_condition": string(in.EquipmentCondition),
			"equipment_age_years": in.EquipmentAgeYears,
			"condition_base":      conditionBase,
			"condition_factor":    conditionFactor,
			"base_rate":           baseRate,
			"usage_factor":        usage,
			"theme_factor":        themeFactor,
			"tech_factor":         tech,
			"effective_rate":      effectiveRate,
		},
	}
}

func maintenanceCost(in restaurant.Input, f map[string]float64) LineItem {
	baseRate := f[FactorMaintenanceRate]
	complexity := f[FactorMaintenanceComplexity]
	preventive := f[FactorPreventive]
	scale := f[FactorMaintenanceScale]
	effectiveRate := baseRate * complexity * preventive * scale
	age := MaintenanceAgeFactor(in.EquipmentAgeYears)

	capacityLoad := math.Min(2.0, float64(in.DailyCapacity)/100)
	operatingHours := math.Min(1.5, 0.8+float64(in.StaffCount)*0.05)
	usage := (capacityLoad + operatingHours) / 2

	amount := in.EquipmentValue * effectiveRate * age * usage

	return LineItem{
		Category:    CategoryEquipment,
		Subcategory: "maintenance",
		Amount:      round2(amount),
		Formula: fmt.Sprintf("%.2f $ × %.4f rate (%.2f × %.2f × %.2f × %.2f) × %.3f age × %.3f usage",
			in.EquipmentValue, effectiveRate, baseRate, complexity, preventive, scale, age, usage),
		Details: map[string]any{
			"equipment_value":       in.EquipmentValue,
			"base_rate":             baseRate,
			"complexity_factor":     complexity,
			"preventive_factor":     preventive,
			"scale_factor":          scale,
			"effective_rate":        effectiveRate,
			"age_factor":            age,
			"capacity_load":         capacityLoad,
			"operating_hours_proxy": operatingHours,
			"usage_factor":          usage,
		},
	}
}
