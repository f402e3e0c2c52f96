package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/led-inventory/internal/common"
)

// RuleConflictError names the active rule a candidate overlaps.
type RuleConflictError struct {
	Candidate Rule
	Existing  Rule
}

func (e *RuleConflictError) Error() string {
	return fmt.Sprintf("rule %q [%g, %g) overlaps active rule %q [%g, %g)",
		e.Candidate.Label, e.Candidate.MinRatio, e.Candidate.MaxRatio,
		e.Existing.Label, e.Existing.MinRatio, e.Existing.MaxRatio)
}

func (e *RuleConflictError) Unwrap() error {
	return common.ErrRuleConflict
}

// WouldConflict reports whether candidate overlaps any other active rule.
// A rule never conflicts with itself, so edits can be checked against the full set.
func WouldConflict(candidate Rule, existing []Rule) bool {
	_, found := findConflict(candidate, existing)
	return found
}

// ValidateBounds checks the rule's own fields.
func ValidateBounds(rule Rule) error {
	if strings.TrimSpace(rule.Label) == "" {
		return fmt.Errorf("%w: missing label", common.ErrInvalidRule)
	}
	if math.IsNaN(rule.MinRatio) || math.IsNaN(rule.MaxRatio) ||
		math.IsInf(rule.MinRatio, 0) || math.IsInf(rule.MaxRatio, 0) {
		return fmt.Errorf("%w: ratio bounds must be finite", common.ErrInvalidRule)
	}
	if rule.MinRatio < 0 {
		return fmt.Errorf("%w: min ratio %g is negative", common.ErrInvalidRule, rule.MinRatio)
	}
	if rule.MinRatio >= rule.MaxRatio {
		return fmt.Errorf("%w: min ratio %g must be below max ratio %g",
			common.ErrInvalidRule, rule.MinRatio, rule.MaxRatio)
	}
	return nil
}

// CheckRule is the gate run before a rule is persisted. Inactive candidates only
// need valid bounds; active ones must not overlap another active rule.
func CheckRule(candidate Rule, existing []Rule) error {
	if err := ValidateBounds(candidate); err != nil {
		return err
	}
	if !candidate.IsActive {
		return nil
	}
	if other, found := findConflict(candidate, existing); found {
		return &RuleConflictError{Candidate: candidate, Existing: other}
	}
	return nil
}

func findConflict(candidate Rule, existing []Rule) (Rule, bool) {
	for _, other := range existing {
		if !other.IsActive {
			continue
		}
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(other) {
			return other, true
		}
	}
	return Rule{}, false
}
