// Package location provides the Location catalog: physical places stock can
// sit, either a warehouse or a live-streaming room.
package location

import (
	"context"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
)

// Type distinguishes how stock at the location is owned. Warehouse stock is
// owned by the location itself; live-room stock is charged to the handler who
// took it there.
type Type string

const (
	TypeWarehouse Type = "WAREHOUSE"
	TypeLiveRoom  Type = "LIVE_ROOM"
)

// Location represents a stock-holding place within a base.
type Location struct {
	entity.Catalog

	Name string `db:"name" json:"name"`
	Type Type   `db:"type" json:"type"`
}

// New creates a Location with required fields.
func New(baseID id.ID, code, name string, locType Type) *Location {
	return &Location{
		Catalog: entity.NewCatalog(baseID, code),
		Name:    name,
		Type:    locType,
	}
}

// Validate implements entity.Validatable.
func (l *Location) Validate(ctx context.Context) error {
	if err := l.Catalog.Validate(ctx); err != nil {
		return err
	}

	if l.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	switch l.Type {
	case TypeWarehouse, TypeLiveRoom:
	default:
		return apperror.NewValidation("invalid location type").
			WithDetail("field", "type").
			WithDetail("value", string(l.Type))
	}

	return nil
}

// Repository defines persistence operations for the Location catalog.
type Repository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, baseID, locationID id.ID) (*Location, error)
	FindByName(ctx context.Context, baseID id.ID, name string) (*Location, error)
	Update(ctx context.Context, l *Location) error
	Delete(ctx context.Context, baseID, locationID id.ID) error

	// ListActive returns every active location for a base.
	ListActive(ctx context.Context, baseID id.ID) ([]*Location, error)
}
