// Package model defines the core data structures for the LED inventory.
package model

import "time"

// UndeterminedCategory is the label given to panels no active rule covers.
const UndeterminedCategory = "Undetermined"

// PanelStatus is the free-form operational state of a panel.
type PanelStatus string

// Common panel states. Any other value is accepted and stored as-is.
const (
	StatusActive   PanelStatus = "active"
	StatusInactive PanelStatus = "inactive"
)

// Dimensions is a panel's pixel resolution.
type Dimensions struct {
	WidthPx  int `json:"widthPx" yaml:"width_px"`
	HeightPx int `json:"heightPx" yaml:"height_px"`
}

// Valid reports whether both dimensions are positive.
func (d Dimensions) Valid() bool {
	return d.WidthPx > 0 && d.HeightPx > 0
}

// Ratio returns width divided by height. The second result is false when the
// ratio is undefined.
func (d Dimensions) Ratio() (float64, bool) {
	if !d.Valid() {
		return 0, false
	}
	return float64(d.WidthPx) / float64(d.HeightPx), true
}

// Area returns width times height in pixels.
func (d Dimensions) Area() int64 {
	return int64(d.WidthPx) * int64(d.HeightPx)
}

// Panel represents an inventoried LED display unit.
type Panel struct {
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	StoreID   *int64      `json:"storeId,omitempty"`
	Code      string      `json:"code"`
	Category  string      `json:"category"`
	Status    PanelStatus `json:"status"`
	Location  string      `json:"location,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	Dimensions
	ID int64 `json:"id"`
}

// IsClassified reports whether a category has been assigned.
func (p Panel) IsClassified() bool {
	return p.Category != ""
}
