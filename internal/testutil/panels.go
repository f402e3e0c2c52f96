package testutil

import (
	"github.com/Veraticus/led-inventory/internal/model"
)

// PanelBuilder assembles panel fixtures in insertion order.
type PanelBuilder struct {
	panels []model.Panel
}

// NewPanelBuilder starts an empty fixture.
func NewPanelBuilder() *PanelBuilder {
	return &PanelBuilder{}
}

// With adds an active panel with the given code and pixel size.
func (b *PanelBuilder) With(code string, width, height int) *PanelBuilder {
	b.panels = append(b.panels, model.Panel{
		Code:       code,
		Status:     model.StatusActive,
		Dimensions: model.Dimensions{WidthPx: width, HeightPx: height},
	})
	return b
}

// WithCategory sets the stored category on the most recently added panel.
func (b *PanelBuilder) WithCategory(category string) *PanelBuilder {
	if n := len(b.panels); n > 0 {
		b.panels[n-1].Category = category
	}
	return b
}

// WithStore assigns the most recently added panel to a store.
func (b *PanelBuilder) WithStore(storeID int64) *PanelBuilder {
	if n := len(b.panels); n > 0 {
		id := storeID
		b.panels[n-1].StoreID = &id
	}
	return b
}

// WithDuplicates adds count panels sharing code, each a step wider than the last.
func (b *PanelBuilder) WithDuplicates(code string, count, width, height, step int) *PanelBuilder {
	for i := 0; i < count; i++ {
		b.With(code, width+i*step, height)
	}
	return b
}

// Build returns a copy of the assembled panels.
func (b *PanelBuilder) Build() []model.Panel {
	return append([]model.Panel(nil), b.panels...)
}
