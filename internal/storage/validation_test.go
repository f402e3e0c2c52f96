package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "LED-55", wantErr: false},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "   ", wantErr: true},
		{name: "string with spaces", str: "  LED-55  ", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "code")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []int64{0, -1} {
		if err := validateID(id, "id"); !errors.Is(err, ErrInvalidID) {
			t.Errorf("validateID(%d) error = %v, want ErrInvalidID", id, err)
		}
	}
	if err := validateID(1, "id"); err != nil {
		t.Errorf("validateID(1) error = %v", err)
	}
}

func TestValidatePanel(t *testing.T) {
	storeID := int64(3)
	badStore := int64(0)

	tests := []struct {
		panel   *model.Panel
		wantErr error
		name    string
	}{
		{
			name:  "valid panel",
			panel: &model.Panel{Code: "LED-55", Dimensions: model.Dimensions{WidthPx: 1920, HeightPx: 1080}},
		},
		{
			name:  "zero dimensions are stored",
			panel: &model.Panel{Code: "LED-00"},
		},
		{
			name:  "with store",
			panel: &model.Panel{Code: "LED-55", StoreID: &storeID},
		},
		{
			name:    "nil panel",
			panel:   nil,
			wantErr: ErrNilParameter,
		},
		{
			name:    "missing code",
			panel:   &model.Panel{Code: "  ", Dimensions: model.Dimensions{WidthPx: 1, HeightPx: 1}},
			wantErr: ErrInvalidPanel,
		},
		{
			name:    "negative width",
			panel:   &model.Panel{Code: "LED-55", Dimensions: model.Dimensions{WidthPx: -1, HeightPx: 1}},
			wantErr: ErrInvalidPanel,
		},
		{
			name:    "negative height",
			panel:   &model.Panel{Code: "LED-55", Dimensions: model.Dimensions{WidthPx: 1, HeightPx: -1}},
			wantErr: ErrInvalidPanel,
		},
		{
			name:    "non-positive store id",
			panel:   &model.Panel{Code: "LED-55", StoreID: &badStore},
			wantErr: ErrInvalidPanel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePanel(tt.panel)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validatePanel() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePanel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStore(t *testing.T) {
	if err := validateStore(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("validateStore(nil) error = %v", err)
	}
	if err := validateStore(&model.Store{Name: " "}); !errors.Is(err, ErrInvalidStore) {
		t.Errorf("validateStore(blank) error = %v", err)
	}
	if err := validateStore(&model.Store{Name: "Kadikoy"}); err != nil {
		t.Errorf("validateStore(valid) error = %v", err)
	}
}

func TestStorageRejectsNilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // a nil context is the case under test
	if _, err := store.ListPanels(nil, service.PanelFilter{}); !errors.Is(err, ErrNilContext) {
		t.Errorf("ListPanels(nil) error = %v, want ErrNilContext", err)
	}
}
