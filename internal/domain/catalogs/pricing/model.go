// Package pricing provides per-partner price overrides.
// An override replaces the product's base price for one partner; absence of
// an override means the base price applies.
package pricing

import (
	"context"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
)

// PriceOverride is one (partner, product) price row.
type PriceOverride struct {
	PartnerID id.ID       `db:"partner_id" json:"partnerId"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Price     types.Money `db:"price" json:"price"`
}

// Validate checks the override invariants.
func (o *PriceOverride) Validate(ctx context.Context) error {
	if id.IsNil(o.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}
	if id.IsNil(o.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if o.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price")
	}
	return nil
}
