// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/led-inventory/internal/model"
)

// PanelFilter defines filtering options for panel queries.
type PanelFilter struct {
	Code     string
	Category string
	StoreID  *int64
	Limit    int
	Offset   int
}

// PanelLister reads full panel snapshots.
type PanelLister interface {
	ListPanels(ctx context.Context, filter PanelFilter) ([]model.Panel, error)
}

// RuleLister reads the active classification rules.
type RuleLister interface {
	ListActiveRules(ctx context.Context) ([]model.ClassificationRule, error)
}

// CategoryUpdater persists a classifier result for one panel.
type CategoryUpdater interface {
	UpdatePanelCategory(ctx context.Context, id int64, category string) error
}

// PanelDeleter removes panels. Deleting an absent id returns nil or common.ErrNotFound.
type PanelDeleter interface {
	DeletePanel(ctx context.Context, id int64) error
}

// PanelStore is the collaborator the cleanup and classification flows need.
type PanelStore interface {
	PanelLister
	RuleLister
	CategoryUpdater
	PanelDeleter
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	PanelStore

	// Panel operations
	CreatePanel(ctx context.Context, panel *model.Panel) error
	GetPanel(ctx context.Context, id int64) (*model.Panel, error)
	UpdatePanel(ctx context.Context, panel *model.Panel) error
	CountPanels(ctx context.Context) (int, error)

	// Rule operations
	CreateRule(ctx context.Context, rule *model.ClassificationRule) error
	GetRule(ctx context.Context, id int64) (*model.ClassificationRule, error)
	ListRules(ctx context.Context) ([]model.ClassificationRule, error)
	UpdateRule(ctx context.Context, rule *model.ClassificationRule) error
	SetRuleActive(ctx context.Context, id int64, active bool) error
	DeleteRule(ctx context.Context, id int64) error

	// Store operations
	CreateStore(ctx context.Context, store *model.Store) error
	GetStore(ctx context.Context, id int64) (*model.Store, error)
	ListStores(ctx context.Context) ([]model.Store, error)
	DeleteStore(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
