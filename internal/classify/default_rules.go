package classify

import "github.com/Veraticus/led-inventory/internal/model"

// DefaultRules returns the built-in portrait/square/landscape rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label:       "Dikey",
			Description: "Portrait panels",
			MinRatio:    0,
			MaxRatio:    0.8,
			IsActive:    true,
		},
		{
			Label:       "Kare",
			Description: "Square panels",
			MinRatio:    0.8,
			MaxRatio:    1.2,
			IsActive:    true,
		},
		{
			Label:       "Yatay",
			Description: "Landscape panels",
			MinRatio:    1.2,
			MaxRatio:    7,
			IsActive:    true,
		},
	}
}

// ValidateRuleSet checks every rule's bounds and that no two active rules overlap.
func ValidateRuleSet(rules []model.ClassificationRule) error {
	for i, rule := range rules {
		if err := CheckRule(rule, rules[:i]); err != nil {
			return err
		}
	}
	return nil
}
