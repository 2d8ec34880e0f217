package partner

import (
	"context"

	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain"
)

// Repository defines the interface for partner persistence.
type Repository interface {
	domain.CatalogRepository[*Partner]

	// GetForUpdate retrieves a partner with a row lock for the credit update
	// inside the ledger write.
	GetForUpdate(ctx context.Context, id id.ID) (*Partner, error)

	// UpdateCreditBalance writes the new running balance for a partner.
	UpdateCreditBalance(ctx context.Context, id id.ID, balance types.Money) error

	// ListByRole retrieves active partners with the given role.
	ListByRole(ctx context.Context, role Role, filter domain.ListFilter) (domain.ListResult[*Partner], error)
}
