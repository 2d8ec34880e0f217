package pricing

import (
	"context"

	"dairyledger/internal/core/id"
)

// Repository defines the interface for price override persistence.
type Repository interface {
	// Upsert creates or replaces the override for (partner, product).
	Upsert(ctx context.Context, override PriceOverride) error

	// Get retrieves the override for (partner, product); NotFound if absent.
	Get(ctx context.Context, partnerID, productID id.ID) (PriceOverride, error)

	// Delete removes the override for (partner, product).
	Delete(ctx context.Context, partnerID, productID id.ID) error

	// ListForPartner retrieves all overrides for a partner.
	ListForPartner(ctx context.Context, partnerID id.ID) ([]PriceOverride, error)
}
