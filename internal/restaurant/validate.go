package restaurant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	MinKitchenSizeSqm   = 10.0
	MaxKitchenSizeSqm   = 1000.0
	MinWorkstations     = 1
	MaxWorkstations     = 50
	MinDailyCapacity    = 10
	MaxDailyCapacity    = 2000
	MinStaffCount       = 1
	MaxStaffCount       = 200
	MaxEquipmentAge     = 30
	MaxEquipmentValue   = 1_000_000.0
	MaxRentPerSqm       = 200.0
	MinSqmPerStation    = 8.0
	MaxSqmPerStation    = 50.0
	MinCoversPerStaff   = 5.0
	MaxCoversPerStaff   = 100.0
	maxSessionNameRunes = 100
	minSessionNameRunes = 3

	// BaseTrainingHours is the default training requirement per employee.
	BaseTrainingHours = 40
	minTrainingHours  = 10
)

// ErrInvalidInput matches every *ValidationError through errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports the first rule a request violated.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, rule, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

var sessionNameNoise = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// Validate checks a raw request field by field, then the cross-field ratios,
// and returns the validated Input. It fails on the first violated rule.
// Zero training hours are replaced by DefaultTrainingHours.
func Validate(req Request) (Input, error) {
	name, err := validateSessionName(req.SessionName)
	if err != nil {
		return Input{}, err
	}

	in := Input{
		SessionName:        name,
		Theme:              Theme(strings.TrimSpace(req.RestaurantTheme)),
		RevenueSize:        RevenueSize(strings.TrimSpace(req.RevenueSize)),
		KitchenSizeSqm:     req.KitchenSizeSqm,
		Workstations:       req.KitchenWorkstations,
		DailyCapacity:      req.DailyCapacity,
		StaffCount:         req.StaffCount,
		ExperienceLevel:    ExperienceLevel(strings.TrimSpace(req.StaffExperienceLevel)),
		TrainingHours:      req.TrainingHoursNeeded,
		EquipmentAgeYears:  req.EquipmentAgeYears,
		EquipmentCondition: Condition(strings.TrimSpace(req.EquipmentCondition)),
		EquipmentValue:     req.EquipmentValue,
		RentPerSqm:         req.LocationRentSqm,
	}

	if !in.Theme.Valid() {
		return Input{}, invalid("restaurant_theme", "enum", "unknown theme %q, expected one of %s", req.RestaurantTheme, joinEnum(Themes))
	}
	if !in.RevenueSize.Valid() {
		return Input{}, invalid("revenue_size", "enum", "unknown revenue size %q, expected one of %s", req.RevenueSize, joinEnum(RevenueSizes))
	}

	if in.KitchenSizeSqm <= 0 {
		return Input{}, invalid("kitchen_size_sqm", "positive", "must be a positive number")
	}
	if in.KitchenSizeSqm < MinKitchenSizeSqm || in.KitchenSizeSqm > MaxKitchenSizeSqm {
		return Input{}, invalid("kitchen_size_sqm", "range", "must be between %g and %g m²", MinKitchenSizeSqm, MaxKitchenSizeSqm)
	}
	if err := intInRange("kitchen_workstations", in.Workstations, MinWorkstations, MaxWorkstations); err != nil {
		return Input{}, err
	}
	if err := intInRange("daily_capacity", in.DailyCapacity, MinDailyCapacity, MaxDailyCapacity); err != nil {
		return Input{}, err
	}
	if err := intInRange("staff_count", in.StaffCount, MinStaffCount, MaxStaffCount); err != nil {
		return Input{}, err
	}
	if !in.ExperienceLevel.Valid() {
		return Input{}, invalid("staff_experience_level", "enum", "unknown experience level %q, expected one of %s", req.StaffExperienceLevel, joinEnum(ExperienceLevels))
	}
	if in.EquipmentCondition == "" {
		return Input{}, invalid("equipment_condition", "required", "equipment condition is required, expected one of %s", joinEnum(Conditions))
	}
	if !in.EquipmentCondition.Valid() {
		return Input{}, invalid("equipment_condition", "enum", "unknown equipment condition %q, expected one of %s", req.EquipmentCondition, joinEnum(Conditions))
	}

	if in.TrainingHours < 0 {
		return Input{}, invalid("training_hours_needed", "non_negative", "must be zero or positive")
	}
	if in.EquipmentAgeYears < 0 {
		return Input{}, invalid("equipment_age_years", "non_negative", "must be zero or positive")
	}
	if in.EquipmentAgeYears > MaxEquipmentAge {
		return Input{}, invalid("equipment_age_years", "range", "must be at most %d years", MaxEquipmentAge)
	}
	if in.EquipmentValue < 0 {
		return Input{}, invalid("equipment_value", "non_negative", "must be zero or positive")
	}
	if in.EquipmentValue > MaxEquipmentValue {
		return Input{}, invalid("equipment_value", "range", "must be at most %.0f", MaxEquipmentValue)
	}
	if in.RentPerSqm < 0 {
		return Input{}, invalid("location_rent_sqm", "non_negative", "must be zero or positive")
	}
	if in.RentPerSqm > MaxRentPerSqm {
		return Input{}, invalid("location_rent_sqm", "range", "must be at most %g per m²", MaxRentPerSqm)
	}

	if err := validateRatios(in); err != nil {
		return Input{}, err
	}

	if in.TrainingHours == 0 {
		in.TrainingHours = DefaultTrainingHours(in.ExperienceLevel, in.Theme)
	}

	return in, nil
}

func validateSessionName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid("session_name", "required", "session name is required")
	}

	name = sessionNameNoise.ReplaceAllString(name, "")
	if runes := []rune(name); len(runes) > maxSessionNameRunes {
		name = string(runes[:maxSessionNameRunes])
	}
	if len([]rune(name)) < minSessionNameRunes {
		return "", invalid("session_name", "min_length", "session name must contain at least %d characters", minSessionNameRunes)
	}
	return name, nil
}

func validateRatios(in Input) error {
	sqmPerStation := in.KitchenSizeSqm / float64(in.Workstations)
	if sqmPerStation < MinSqmPerStation {
		return invalid("kitchen_workstations", "sqm_per_station", "too many workstations for the kitchen size (min %g m² per station)", MinSqmPerStation)
	}
	if sqmPerStation > MaxSqmPerStation {
		return invalid("kitchen_workstations", "sqm_per_station", "not enough workstations for the kitchen size (max %g m² per station)", MaxSqmPerStation)
	}

	coversPerStaff := in.CoversPerStaff()
	if coversPerStaff < MinCoversPerStaff {
		return invalid("staff_count", "covers_per_staff", "too many staff for the capacity (min %g covers per employee)", MinCoversPerStaff)
	}
	if coversPerStaff > MaxCoversPerStaff {
		return invalid("staff_count", "covers_per_staff", "not enough staff for the capacity (max %g covers per employee)", MaxCoversPerStaff)
	}
	return nil
}

func intInRange(field string, v, lo, hi int) error {
	if v <= 0 {
		return invalid(field, "positive", "must be a positive integer")
	}
	if v < lo || v > hi {
		return invalid(field, "range", "must be between %d and %d", lo, hi)
	}
	return nil
}

// DefaultTrainingHours derives the per-employee training requirement from the
// experience level and theme, with a floor of 10 hours.
func DefaultTrainingHours(level ExperienceLevel, theme Theme) int {
	hours := int(float64(BaseTrainingHours) * experienceTrainingMultiplier(level) * themeTrainingMultiplier(theme))
	return max(minTrainingHours, hours)
}

func experienceTrainingMultiplier(level ExperienceLevel) float64 {
	switch level {
	case ExperienceBeginner:
		return 1.5
	case ExperienceExperienced:
		return 0.7
	case ExperienceExpert:
		return 0.4
	default:
		return 1.0
	}
}

func themeTrainingMultiplier(theme Theme) float64 {
	switch theme {
	case ThemeFastFood:
		return 0.8
	case ThemeFineDining:
		return 1.8
	case ThemeCloudKitchen:
		return 0.9
	case ThemeFoodTruck:
		return 0.7
	default:
		return 1.0
	}
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
