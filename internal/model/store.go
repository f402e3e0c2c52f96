package model

import "time"

// Store is a retail location where panels are installed.
type Store struct {
	CreatedAt  time.Time `json:"createdAt"`
	Name       string    `json:"name"`
	City       string    `json:"city,omitempty"`
	ID         int64     `json:"id"`
	PanelCount int       `json:"panelCount"`
}
