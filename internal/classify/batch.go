package classify

import (
	"github.com/Veraticus/led-inventory/internal/model"
)

// ItemError records a panel that could not be classified.
type ItemError struct {
	Err     error  `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code"`
	PanelID int64  `json:"panelId"`
}

func (e ItemError) Error() string {
	return e.Message
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// BatchResult maps panel IDs to labels. Malformed panels are labelled
// model.UndeterminedCategory and also listed in Errors.
type BatchResult struct {
	Labels map[int64]string `json:"labels"`
	Errors []ItemError      `json:"errors"`
}

// CategoryChange is a panel whose computed label differs from its stored one.
type CategoryChange struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Code    string `json:"code"`
	PanelID int64  `json:"panelId"`
}

// ClassifyAll classifies every panel in the snapshot. A bad row never fails the batch.
func (c *Classifier) ClassifyAll(panels []model.Panel) BatchResult {
	result := BatchResult{
		Labels: make(map[int64]string, len(panels)),
		Errors: []ItemError{},
	}

	for _, panel := range panels {
		label, err := c.Classify(panel.Dimensions)
		if err != nil {
			result.Labels[panel.ID] = model.UndeterminedCategory
			result.Errors = append(result.Errors, ItemError{
				PanelID: panel.ID,
				Code:    panel.Code,
				Err:     err,
				Message: err.Error(),
			})
			continue
		}
		result.Labels[panel.ID] = label
	}

	return result
}

// ClassifyAll is a convenience wrapper for one-off batch classification.
func ClassifyAll(panels []model.Panel, rules []Rule) BatchResult {
	return NewClassifier(rules).ClassifyAll(panels)
}

// Changes lists the panels whose stored category differs from the batch result,
// in snapshot order.
func Changes(panels []model.Panel, result BatchResult) []CategoryChange {
	var changes []CategoryChange
	for _, panel := range panels {
		label, ok := result.Labels[panel.ID]
		if !ok || label == panel.Category {
			continue
		}
		changes = append(changes, CategoryChange{
			PanelID: panel.ID,
			Code:    panel.Code,
			From:    panel.Category,
			To:      label,
		})
	}
	return changes
}
