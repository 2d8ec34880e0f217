package product

import (
	"context"
	"fmt"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/tx"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain"
	"dairyledger/pkg/logger"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Upsert creates a product or updates the price of an existing one, keyed by
// unique name. Idempotent: calling twice with the same arguments is a no-op.
func (s *Service) Upsert(ctx context.Context, name string, price types.Money) (*Product, error) {
	p := NewProduct(name, price)
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByName(ctx, name)
		if err != nil {
			if apperror.IsNotFound(err) {
				return s.repo.Create(ctx, p)
			}
			return err
		}

		existing.Price = price
		existing.Reactivate()
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		p = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "product upserted", "id", p.ID, "name", p.Name)
	return p, nil
}

// GetByID retrieves a product by ID.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetByName retrieves a product by its unique name.
func (s *Service) GetByName(ctx context.Context, name string) (*Product, error) {
	return s.repo.GetByName(ctx, name)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// Deactivate soft-deletes a product. Referenced products are never removed.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	return s.repo.Deactivate(ctx, productID)
}
