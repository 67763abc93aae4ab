package domain

import (
	"context"

	"lmis/internal/core/apperror"
	"lmis/internal/core/entity"
	"lmis/internal/core/id"
	"lmis/pkg/logger"
)

// CatalogService provides common CRUD logic for catalog entities.
// Entity-specific services embed it and add their own methods.
type CatalogService[T entity.Validatable] struct {
	repo       CatalogRepository[T]
	entityName string
}

// NewCatalogService creates a catalog service over the given repository.
func NewCatalogService[T entity.Validatable](repo CatalogRepository[T], entityName string) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       repo,
		entityName: entityName,
	}
}

// Create validates and persists a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, item T) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	logger.Info(ctx, "catalog entry created", "entity", s.entityName)
	return nil
}

// GetByID retrieves an entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return s.repo.GetByID(ctx, entityID)
}

// GetByCode retrieves an entity by code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	var zero T
	if code == "" {
		return zero, apperror.NewValidation("code is required")
	}
	return s.repo.GetByCode(ctx, code)
}

// Update validates and persists changes to an entity.
func (s *CatalogService[T]) Update(ctx context.Context, item T) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, item)
}

// List retrieves entities with filtering and pagination.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// Repo exposes the underlying repository to embedding services.
func (s *CatalogService[T]) Repo() CatalogRepository[T] {
	return s.repo
}
