// Package handler provides the Handler catalog: people (anchors, warehouse
// staff) who custody stock at a point in time.
package handler

import (
	"context"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/core/entity"
	"anchorstock/internal/core/id"
)

// Handler represents a person who holds stock for a base.
type Handler struct {
	entity.Catalog

	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone,omitempty"`
}

// New creates a Handler with required fields.
func New(baseID id.ID, code, name string) *Handler {
	return &Handler{
		Catalog: entity.NewCatalog(baseID, code),
		Name:    name,
	}
}

// Validate implements entity.Validatable.
func (h *Handler) Validate(ctx context.Context) error {
	if err := h.Catalog.Validate(ctx); err != nil {
		return err
	}

	if h.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	return nil
}

// Repository defines persistence operations for the Handler catalog.
type Repository interface {
	Create(ctx context.Context, h *Handler) error
	GetByID(ctx context.Context, baseID, handlerID id.ID) (*Handler, error)
	FindByName(ctx context.Context, baseID id.ID, name string) (*Handler, error)
	Update(ctx context.Context, h *Handler) error
	Delete(ctx context.Context, baseID, handlerID id.ID) error
	ListActive(ctx context.Context, baseID id.ID) ([]*Handler, error)
}
