package product

import (
	"context"

	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain"
)

// Repository defines the interface for product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves a product with a row lock. The ledger takes this
	// lock before reading current_stock so concurrent writers cannot break
	// stock conservation.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// UpdateStock writes the new running stock for a product.
	// Must be called inside the transaction that recorded the movement.
	UpdateStock(ctx context.Context, id id.ID, stock types.Quantity) error
}
