package goods

import (
	"context"

	"anchorstock/internal/core/id"
)

// ListFilter narrows List results.
type ListFilter struct {
	// Search matches name or code (substring)
	Search string

	// Category filters by exact category
	Category string

	// ActiveOnly excludes inactive goods
	ActiveOnly bool

	Limit  int
	Offset int
}

// Repository defines persistence operations for the Goods catalog.
type Repository interface {
	Create(ctx context.Context, g *Goods) error

	// GetByID returns the good, scoped to its base.
	GetByID(ctx context.Context, baseID, goodsID id.ID) (*Goods, error)

	// FindByName resolves a good by display name within a base. Used by the
	// spreadsheet-import path, which carries names instead of ids.
	FindByName(ctx context.Context, baseID id.ID, name string) (*Goods, error)

	Update(ctx context.Context, g *Goods) error

	Delete(ctx context.Context, baseID, goodsID id.ID) error

	// List returns goods for a base with filtering and pagination.
	List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Goods, int64, error)

	// ListActive returns every active good for a base (snapshot scan order:
	// by code).
	ListActive(ctx context.Context, baseID id.ID) ([]*Goods, error)
}
