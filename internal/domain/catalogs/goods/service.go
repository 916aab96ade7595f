package goods

import (
	"context"
	"fmt"

	"anchorstock/internal/core/id"
	"anchorstock/pkg/logger"
)

// Service provides business operations for the Goods catalog.
type Service struct {
	repo Repository
}

// NewService creates a new goods service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and inserts a new good.
func (s *Service) Create(ctx context.Context, g *Goods) error {
	if err := g.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return fmt.Errorf("create goods: %w", err)
	}

	logger.Info(ctx, "goods created",
		"id", g.ID,
		"base_id", g.BaseID,
		"code", g.Code,
	)
	return nil
}

// GetByID retrieves a good scoped to a base.
func (s *Service) GetByID(ctx context.Context, baseID, goodsID id.ID) (*Goods, error) {
	return s.repo.GetByID(ctx, baseID, goodsID)
}

// Update validates and persists changes to a good.
func (s *Service) Update(ctx context.Context, g *Goods) error {
	if err := g.Validate(ctx); err != nil {
		return err
	}

	g.Touch()
	if err := s.repo.Update(ctx, g); err != nil {
		return fmt.Errorf("update goods: %w", err)
	}
	return nil
}

// Delete removes a good.
func (s *Service) Delete(ctx context.Context, baseID, goodsID id.ID) error {
	return s.repo.Delete(ctx, baseID, goodsID)
}

// List retrieves goods with filtering and pagination.
func (s *Service) List(ctx context.Context, baseID id.ID, filter ListFilter) ([]*Goods, int64, error) {
	return s.repo.List(ctx, baseID, filter)
}
