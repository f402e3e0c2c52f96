package model

import "time"

// ClassificationRule maps the half-open ratio interval [MinRatio, MaxRatio) to a label.
type ClassificationRule struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	ID          int64     `json:"id"`
	MinRatio    float64   `json:"minRatio"`
	MaxRatio    float64   `json:"maxRatio"`
	IsActive    bool      `json:"active"`
}

// Contains reports whether ratio falls inside the rule's interval.
func (r ClassificationRule) Contains(ratio float64) bool {
	return r.MinRatio <= ratio && ratio < r.MaxRatio
}

// Overlaps reports whether the two half-open intervals intersect.
func (r ClassificationRule) Overlaps(other ClassificationRule) bool {
	return r.MinRatio < other.MaxRatio && other.MinRatio < r.MaxRatio
}
