package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/led-inventory/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidID    = errors.New("invalid id")
	ErrInvalidPanel = errors.New("invalid panel")
	ErrInvalidStore = errors.New("invalid store")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// validatePanel validates a panel before it is written. Zero dimensions are
// accepted so legacy rows with unknown resolution can be stored; the classifier
// reports them per item.
func validatePanel(panel *model.Panel) error {
	if panel == nil {
		return fmt.Errorf("%w: panel", ErrNilParameter)
	}
	if strings.TrimSpace(panel.Code) == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidPanel)
	}
	if panel.WidthPx < 0 || panel.HeightPx < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidPanel, panel.WidthPx, panel.HeightPx)
	}
	if panel.StoreID != nil && *panel.StoreID <= 0 {
		return fmt.Errorf("%w: store id %d", ErrInvalidPanel, *panel.StoreID)
	}
	return nil
}

// validateStore validates a store.
func validateStore(store *model.Store) error {
	if store == nil {
		return fmt.Errorf("%w: store", ErrNilParameter)
	}
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidStore)
	}
	return nil
}
