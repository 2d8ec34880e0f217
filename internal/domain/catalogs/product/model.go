// Package product provides the product catalog.
// Products carry a base unit price and a signed running stock quantity that
// only the transaction ledger and stock register may mutate.
package product

import (
	"context"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/types"
)

// Product represents a sellable/purchasable item.
type Product struct {
	entity.Catalog

	// Price is the base unit price, overridable per partner
	Price types.Money `db:"price" json:"price"`

	// CurrentStock is the signed running quantity. Negative stock is allowed:
	// the ledger records what happened, it does not refuse sales.
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`
}

// NewProduct creates a new product with zero stock.
func NewProduct(name string, price types.Money) *Product {
	return &Product{
		Catalog: entity.NewCatalog(name),
		Price:   price,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price")
	}

	return nil
}
