package restaurant

import (
	"fmt"
	"strings"
)

// Describe renders a short human-readable overview of a validated input,
// suitable for confirming parameters before running a calculation.
func Describe(in Input) map[string]string {
	rent := "no fixed rent"
	if in.RentPerSqm > 0 {
		rent = fmt.Sprintf("%g CAD$/m²", in.RentPerSqm)
	}

	return map[string]string{
		"session":   in.SessionName,
		"type":      fmt.Sprintf("%s (%s)", titleTheme(in.Theme), in.RevenueSize),
		"kitchen":   fmt.Sprintf("%g m² with %d workstations", in.KitchenSizeSqm, in.Workstations),
		"capacity":  fmt.Sprintf("%d covers/day", in.DailyCapacity),
		"staff":     fmt.Sprintf("%d employees (%s)", in.StaffCount, in.ExperienceLevel),
		"training":  fmt.Sprintf("%d hours required", in.TrainingHours),
		"equipment": fmt.Sprintf("%s (age: %d years, value: %.0f CAD$)", in.EquipmentCondition, in.EquipmentAgeYears, in.EquipmentValue),
		"rent":      rent,
	}
}

func titleTheme(t Theme) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
