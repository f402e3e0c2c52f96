// Package classify assigns aspect-ratio categories to panels from configured range rules.
package classify

import (
	"fmt"
	"sort"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
)

// Rule is an alias to the model.ClassificationRule type for convenience.
type Rule = model.ClassificationRule

// Classifier evaluates panel ratios against a snapshot of rules.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over the active rules in the snapshot.
// The caller's slice is not modified.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: ActiveSorted(rules)}
}

// Rules returns the active rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the label of the first rule containing the panel's ratio,
// or model.UndeterminedCategory when none does.
func (c *Classifier) Classify(d model.Dimensions) (string, error) {
	ratio, ok := d.Ratio()
	if !ok {
		return "", fmt.Errorf("%w: %dx%d", common.ErrInvalidDimensions, d.WidthPx, d.HeightPx)
	}

	for _, rule := range c.rules {
		if rule.Contains(ratio) {
			return rule.Label, nil
		}
	}

	return model.UndeterminedCategory, nil
}

// Classify is a convenience wrapper for one-off classification.
func Classify(d model.Dimensions, rules []Rule) (string, error) {
	return NewClassifier(rules).Classify(d)
}

// ActiveSorted returns a copy of the active rules ordered by MinRatio, then ID.
func ActiveSorted(rules []Rule) []Rule {
	active := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].MinRatio != active[j].MinRatio {
			return active[i].MinRatio < active[j].MinRatio
		}
		return active[i].ID < active[j].ID
	})

	return active
}
