package pricing

import (
	"context"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/product"
)

// Service provides business logic for partner-specific pricing.
type Service struct {
	repo     Repository
	products product.Repository
}

// NewService creates a new pricing service.
func NewService(repo Repository, products product.Repository) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// Set creates or replaces a price override.
func (s *Service) Set(ctx context.Context, partnerID, productID id.ID, price types.Money) error {
	override := PriceOverride{
		PartnerID: partnerID,
		ProductID: productID,
		Price:     price,
	}
	if err := override.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, override)
}

// Remove deletes a price override; the base price applies afterwards.
func (s *Service) Remove(ctx context.Context, partnerID, productID id.ID) error {
	return s.repo.Delete(ctx, partnerID, productID)
}

// PriceFor returns the effective unit price for a partner and product:
// the override if one exists, the product's base price otherwise.
func (s *Service) PriceFor(ctx context.Context, partnerID, productID id.ID) (types.Money, error) {
	override, err := s.repo.Get(ctx, partnerID, productID)
	if err == nil {
		return override.Price, nil
	}
	if !apperror.IsNotFound(err) {
		return types.Zero(), err
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return types.Zero(), err
	}
	return p.Price, nil
}

// ListForPartner retrieves all overrides for a partner.
func (s *Service) ListForPartner(ctx context.Context, partnerID id.ID) ([]PriceOverride, error) {
	return s.repo.ListForPartner(ctx, partnerID)
}
