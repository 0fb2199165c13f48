// Package restaurant holds the restaurant parameters the cost engine consumes:
// the closed enums, the raw request and the validated Input.
package restaurant

// Theme is the restaurant concept category.
type Theme string

const (
	ThemeFastFood     Theme = "fast_food"
	ThemeCasualDining Theme = "casual_dining"
	ThemeFineDining   Theme = "fine_dining"
	ThemeCloudKitchen Theme = "cloud_kitchen"
	ThemeFoodTruck    Theme = "food_truck"
)

// Themes lists every theme in display order.
var Themes = []Theme{ThemeFastFood, ThemeCasualDining, ThemeFineDining, ThemeCloudKitchen, ThemeFoodTruck}

// Valid reports whether t is one of the known themes. The empty theme is not valid.
func (t Theme) Valid() bool {
	switch t {
	case ThemeFastFood, ThemeCasualDining, ThemeFineDining, ThemeCloudKitchen, ThemeFoodTruck:
		return true
	}
	return false
}

// RevenueSize is the coarse business-scale bucket.
type RevenueSize string

const (
	RevenueSmall      RevenueSize = "small"      // < 500k
	RevenueMedium     RevenueSize = "medium"     // 500k - 2M
	RevenueLarge      RevenueSize = "large"      // 2M - 10M
	RevenueEnterprise RevenueSize = "enterprise" // > 10M
)

var RevenueSizes = []RevenueSize{RevenueSmall, RevenueMedium, RevenueLarge, RevenueEnterprise}

func (r RevenueSize) Valid() bool {
	switch r {
	case RevenueSmall, RevenueMedium, RevenueLarge, RevenueEnterprise:
		return true
	}
	return false
}

// ExperienceLevel describes the staff's overall experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExperienced  ExperienceLevel = "experienced"
	ExperienceExpert       ExperienceLevel = "expert"
)

var ExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert}

func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert:
		return true
	}
	return false
}

// Condition is the overall state of the kitchen equipment.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Request is the raw, unvalidated calculation request as it arrives at the
// process boundary.
type Request struct {
	SessionName          string  `json:"session_name" yaml:"session_name"`
	RestaurantTheme      string  `json:"restaurant_theme" yaml:"restaurant_theme"`
	RevenueSize          string  `json:"revenue_size" yaml:"revenue_size"`
	KitchenSizeSqm       float64 `json:"kitchen_size_sqm" yaml:"kitchen_size_sqm"`
	KitchenWorkstations  int     `json:"kitchen_workstations" yaml:"kitchen_workstations"`
	DailyCapacity        int     `json:"daily_capacity" yaml:"daily_capacity"`
	StaffCount           int     `json:"staff_count" yaml:"staff_count"`
	StaffExperienceLevel string  `json:"staff_experience_level" yaml:"staff_experience_level"`
	TrainingHoursNeeded  int     `json:"training_hours_needed,omitempty" yaml:"training_hours_needed"`
	EquipmentAgeYears    int     `json:"equipment_age_years,omitempty" yaml:"equipment_age_years"`
	EquipmentCondition   string  `json:"equipment_condition" yaml:"equipment_condition"`
	EquipmentValue       float64 `json:"equipment_value,omitempty" yaml:"equipment_value"`
	LocationRentSqm      float64 `json:"location_rent_sqm,omitempty" yaml:"location_rent_sqm"`
}

// Input is a validated set of restaurant parameters. Values of this type are
// only produced by Validate and are passed by value.
type Input struct {
	SessionName        string          `json:"session_name"`
	Theme              Theme           `json:"restaurant_theme"`
	RevenueSize        RevenueSize     `json:"revenue_size"`
	KitchenSizeSqm     float64         `json:"kitchen_size_sqm"`
	Workstations       int             `json:"kitchen_workstations"`
	DailyCapacity      int             `json:"daily_capacity"`
	StaffCount         int             `json:"staff_count"`
	ExperienceLevel    ExperienceLevel `json:"staff_experience_level"`
	TrainingHours      int             `json:"training_hours_needed"`
	EquipmentAgeYears  int             `json:"equipment_age_years"`
	EquipmentCondition Condition       `json:"equipment_condition"`
	EquipmentValue     float64         `json:"equipment_value"`
	RentPerSqm         float64         `json:"location_rent_sqm"`
}

// Density is the daily capacity per square metre of kitchen. The cost formulas
// use it as a proxy for how busy the location is.
func (in Input) Density() float64 {
	return float64(in.DailyCapacity) / in.KitchenSizeSqm
}

// CoversPerStaff is the daily capacity handled by each employee.
func (in Input) CoversPerStaff() float64 {
	return float64(in.DailyCapacity) / float64(in.StaffCount)
}
