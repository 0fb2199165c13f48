package costing

import (
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/restaurant"
)

// Factor names queried from the resolver.
const (
	FactorTrainingRate          = "training_rate_per_hour"
	FactorTrainingComplexity    = "training_complexity"
	FactorTrainingSize          = "training_size_factor"
	FactorBaseHourlyWage        = "base_hourly_wage"
	FactorSalaryTheme           = "salary_theme_multiplier"
	FactorSalaryRevenue         = "salary_revenue_multiplier"
	FactorDepreciationRate      = "depreciation_rate"
	FactorEquipmentTheme        = "equipment_theme_factor"
	FactorConditionPrefix       = "condition_factor_"
	FactorMaintenanceRate       = "maintenance_rate"
	FactorMaintenanceComplexity = "maintenance_complexity"
	FactorPreventive            = "preventive_maintenance_factor"
	FactorMaintenanceScale      = "maintenance_scale_factor"
	FactorRentLocation          = "rent_location_factor"
	FactorUtilitiesRate         = "utilities_rate_per_sqm"
	FactorOperatingDays         = "operating_days"
	FactorFoodCostPerCover      = "food_cost_per_cover"
	FactorFoodQuality           = "food_quality_factor"
	FactorSeasonal              = "seasonal_factor"
	FactorKitchenEfficiency     = "kitchen_efficiency_factor"
	FactorMarketingBudget       = "marketing_budget"
	FactorMarketingTheme        = "marketing_theme_factor"
	FactorDigitalMarketing      = "digital_marketing_factor"
)

type scope int

const (
	scopeGeneric scope = iota
	scopeTheme
	scopeRevenue
)

// slot says which column of the factor table carries the value.
type slot int

const (
	slotMultiplier slot = iota
	slotBaseCost
)

type definition struct {
	name        string
	category    Category
	scope       scope
	slot        slot
	description string
	condition   restaurant.Condition
	generic     float64
	theme       func(restaurant.Theme) float64
	revenue     func(restaurant.RevenueSize) float64
}

func (d definition) value(theme restaurant.Theme, size restaurant.RevenueSize) float64 {
	switch d.scope {
	case scopeTheme:
		return d.theme(theme)
	case scopeRevenue:
		return d.revenue(size)
	default:
		return d.generic
	}
}

var definitions = []definition{
	{name: FactorTrainingRate, category: CategoryStaff, scope: scopeTheme, slot: slotBaseCost, description: "Training cost per hour (CAD$)", theme: trainingRate},
	{name: FactorTrainingComplexity, category: CategoryStaff, scope: scopeTheme, description: "Training complexity of the concept", theme: trainingComplexity},
	{name: FactorTrainingSize, category: CategoryStaff, scope: scopeRevenue, description: "Training program scale by business size", revenue: trainingSize},
	{name: FactorBaseHourlyWage, category: CategoryStaff, scope: scopeGeneric, slot: slotBaseCost, description: "Base staff hourly wage (CAD$)", generic: 18.0},
	{name: FactorSalaryTheme, category: CategoryStaff, scope: scopeTheme, description: "Salary level of the concept", theme: salaryTheme},
	{name: FactorSalaryRevenue, category: CategoryStaff, scope: scopeRevenue, description: "Salary level by business size", revenue: salaryRevenue},

	{name: FactorDepreciationRate, category: CategoryEquipment, scope: scopeGeneric, description: "Annual depreciation rate (5-year straight line)", generic: 0.20},
	{name: FactorEquipmentTheme, category: CategoryEquipment, scope: scopeTheme, description: "Equipment wear of the concept", theme: equipmentTheme},
	{name: FactorConditionPrefix + string(restaurant.ConditionExcellent), category: CategoryEquipment, condition: restaurant.ConditionExcellent, description: "Depreciation weight, excellent condition", generic: 0.8},
	{name: FactorConditionPrefix + string(restaurant.ConditionGood), category: CategoryEquipment, condition: restaurant.ConditionGood, description: "Depreciation weight, good condition", generic: 1.0},
	{name: FactorConditionPrefix + string(restaurant.ConditionFair), category: CategoryEquipment, condition: restaurant.ConditionFair, description: "Depreciation weight, fair condition", generic: 1.25},
	{name: FactorConditionPrefix + string(restaurant.ConditionPoor), category: CategoryEquipment, condition: restaurant.ConditionPoor, description: "Depreciation weight, poor condition", generic: 1.5},
	{name: FactorMaintenanceRate, category: CategoryEquipment, scope: scopeGeneric, description: "Annual maintenance as a share of equipment value", generic: 0.05},
	{name: FactorMaintenanceComplexity, category: CategoryEquipment, scope: scopeTheme, description: "Maintenance complexity of the concept", theme: maintenanceComplexity},
	{name: FactorPreventive, category: CategoryEquipment, scope: scopeGeneric, description: "Preventive maintenance program discount", generic: 0.95},
	{name: FactorMaintenanceScale, category: CategoryEquipment, scope: scopeRevenue, description: "Maintenance contract scale by business size", revenue: maintenanceScale},

	{name: FactorRentLocation, category: CategoryLocation, scope: scopeTheme, description: "Location premium of the concept", theme: rentLocation},
	{name: FactorUtilitiesRate, category: CategoryLocation, scope: scopeGeneric, slot: slotBaseCost, description: "Monthly utilities per m² (CAD$)", generic: 12.0},

	{name: FactorOperatingDays, category: CategoryOperations, scope: scopeTheme, slot: slotBaseCost, description: "Operating days per year", theme: operatingDays},
	{name: FactorFoodCostPerCover, category: CategoryOperations, scope: scopeTheme, slot: slotBaseCost, description: "Food cost per cover (CAD$)", theme: foodCostPerCover},
	{name: FactorFoodQuality, category: CategoryOperations, scope: scopeRevenue, description: "Ingredient quality by business size", revenue: foodQuality},
	{name: FactorSeasonal, category: CategoryOperations, scope: scopeTheme, description: "Seasonal price variation", theme: seasonal},
	{name: FactorKitchenEfficiency, category: CategoryOperations, scope: scopeTheme, description: "Kitchen efficiency of the concept", theme: kitchenEfficiency},
	{name: FactorMarketingBudget, category: CategoryOperations, scope: scopeRevenue, slot: slotBaseCost, description: "Base annual marketing budget (CAD$)", revenue: marketingBudget},
	{name: FactorMarketingTheme, category: CategoryOperations, scope: scopeTheme, description: "Marketing intensity of the concept", theme: marketingTheme},
	{name: FactorDigitalMarketing, category: CategoryOperations, scope: scopeTheme, description: "Digital channel weight of the concept", theme: digitalMarketing},
}

// defaults returns the built-in value of every factor a category needs for
// the given input. These are passed to the resolver as fallbacks.
func defaults(category Category, in restaurant.Input) map[string]float64 {
	out := make(map[string]float64)
	for _, d := range definitions {
		if d.category != category {
			continue
		}
		if d.condition != "" && d.condition != in.EquipmentCondition {
			continue
		}
		out[d.name] = d.value(in.Theme, in.RevenueSize)
	}
	return out
}

// BuiltinValue returns the built-in value of the named factor for a scope.
func BuiltinValue(name string, theme restaurant.Theme, size restaurant.RevenueSize) (float64, bool) {
	for _, d := range definitions {
		if d.name != name {
			continue
		}
		if (d.scope == scopeTheme && !theme.Valid()) || (d.scope == scopeRevenue && !size.Valid()) {
			return 0, false
		}
		return d.value(theme, size), true
	}
	return 0, false
}

// BuiltinFactors expands the built-in tables into factor rows, one per scope
// the factor varies by. Seeding a store with these rows does not change any
// calculation result.
func BuiltinFactors() []factors.CostFactor {
	rows := make([]factors.CostFactor, 0, len(definitions)*len(restaurant.Themes))
	for _, d := range definitions {
		switch d.scope {
		case scopeTheme:
			for _, t := range restaurant.Themes {
				row := d.row(d.theme(t))
				row.Theme = t
				rows = append(rows, row)
			}
		case scopeRevenue:
			for _, s := range restaurant.RevenueSizes {
				row := d.row(d.revenue(s))
				row.RevenueSize = s
				rows = append(rows, row)
			}
		default:
			rows = append(rows, d.row(d.generic))
		}
	}
	return rows
}

func (d definition) row(v float64) factors.CostFactor {
	f := factors.CostFactor{
		Name:        d.name,
		Category:    string(d.category),
		Description: d.description,
		Multiplier:  1.0,
		Active:      true,
	}
	if d.slot == slotBaseCost {
		f.BaseCost = v
	} else {
		f.Multiplier = v
	}
	return f
}

func trainingRate(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 22.0
	case restaurant.ThemeFineDining:
		return 45.0
	case restaurant.ThemeCloudKitchen:
		return 25.0
	case restaurant.ThemeFoodTruck:
		return 20.0
	default:
		return 30.0
	}
}

func trainingComplexity(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 0.9
	case restaurant.ThemeFineDining:
		return 1.4
	case restaurant.ThemeCloudKitchen:
		return 0.95
	case restaurant.ThemeFoodTruck:
		return 0.85
	default:
		return 1.0
	}
}

func trainingSize(s restaurant.RevenueSize) float64 {
	switch s {
	case restaurant.RevenueSmall:
		return 0.9
	case restaurant.RevenueLarge:
		return 1.15
	case restaurant.RevenueEnterprise:
		return 1.3
	default:
		return 1.0
	}
}

func salaryTheme(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 0.85
	case restaurant.ThemeFineDining:
		return 1.35
	case restaurant.ThemeCloudKitchen:
		return 0.9
	case restaurant.ThemeFoodTruck:
		return 0.8
	default:
		return 1.0
	}
}

func salaryRevenue(s restaurant.RevenueSize) float64 {
	switch s {
	case restaurant.RevenueSmall:
		return 0.9
	case restaurant.RevenueLarge:
		return 1.1
	case restaurant.RevenueEnterprise:
		return 1.2
	default:
		return 1.0
	}
}

func equipmentTheme(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 1.15
	case restaurant.ThemeFineDining:
		return 1.1
	case restaurant.ThemeCloudKitchen:
		return 1.05
	case restaurant.ThemeFoodTruck:
		return 1.2
	default:
		return 1.0
	}
}

func maintenanceComplexity(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 1.1
	case restaurant.ThemeFineDining:
		return 1.25
	case restaurant.ThemeCloudKitchen:
		return 1.05
	case restaurant.ThemeFoodTruck:
		return 1.3
	default:
		return 1.0
	}
}

func maintenanceScale(s restaurant.RevenueSize) float64 {
	switch s {
	case restaurant.RevenueSmall:
		return 1.1
	case restaurant.RevenueLarge:
		return 0.95
	case restaurant.RevenueEnterprise:
		return 0.9
	default:
		return 1.0
	}
}

func rentLocation(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 1.1
	case restaurant.ThemeFineDining:
		return 1.2
	case restaurant.ThemeCloudKitchen:
		return 0.7
	case restaurant.ThemeFoodTruck:
		return 0.5
	default:
		return 1.0
	}
}

func operatingDays(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood, restaurant.ThemeCloudKitchen:
		return 360
	case restaurant.ThemeFineDining:
		return 310
	case restaurant.ThemeFoodTruck:
		return 250
	default:
		return 350
	}
}

func foodCostPerCover(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 4.5
	case restaurant.ThemeFineDining:
		return 28.0
	case restaurant.ThemeCloudKitchen:
		return 6.0
	case restaurant.ThemeFoodTruck:
		return 5.0
	default:
		return 9.0
	}
}

func foodQuality(s restaurant.RevenueSize) float64 {
	switch s {
	case restaurant.RevenueSmall:
		return 0.95
	case restaurant.RevenueLarge:
		return 1.08
	case restaurant.RevenueEnterprise:
		return 1.12
	default:
		return 1.0
	}
}

func seasonal(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeCasualDining:
		return 1.03
	case restaurant.ThemeFineDining:
		return 1.08
	case restaurant.ThemeFoodTruck:
		return 1.15
	default:
		return 1.0
	}
}

func kitchenEfficiency(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 0.9
	case restaurant.ThemeFineDining:
		return 1.1
	case restaurant.ThemeCloudKitchen:
		return 0.92
	case restaurant.ThemeFoodTruck:
		return 0.95
	default:
		return 1.0
	}
}

func marketingBudget(s restaurant.RevenueSize) float64 {
	switch s {
	case restaurant.RevenueSmall:
		return 12000
	case restaurant.RevenueLarge:
		return 90000
	case restaurant.RevenueEnterprise:
		return 250000
	default:
		return 35000
	}
}

func marketingTheme(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 1.3
	case restaurant.ThemeFineDining:
		return 1.15
	case restaurant.ThemeCloudKitchen:
		return 1.4
	case restaurant.ThemeFoodTruck:
		return 0.8
	default:
		return 1.0
	}
}

func digitalMarketing(t restaurant.Theme) float64 {
	switch t {
	case restaurant.ThemeFastFood:
		return 1.1
	case restaurant.ThemeFineDining:
		return 0.95
	case restaurant.ThemeCloudKitchen:
		return 1.35
	case restaurant.ThemeFoodTruck:
		return 1.2
	default:
		return 1.0
	}
}
