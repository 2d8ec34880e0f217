package dto

import (
	"dairyledger/internal/core/types"
)

// ProductRequest is the create-or-update payload for a product.
type ProductRequest struct {
	Name  string `json:"name" binding:"required"`
	Price string `json:"price"`
}

// PriceMoney coerces the price field, defaulting to zero.
func (r ProductRequest) PriceMoney() types.Money {
	return types.CoerceMoney(r.Price, types.Zero())
}

// PartnerRequest is the create-or-update payload for a partner.
type PartnerRequest struct {
	Name          string `json:"name" binding:"required"`
	Contact       string `json:"contact"`
	Role          string `json:"role" binding:"required"`
	CreditBalance string `json:"creditBalance"`
}

// BalanceMoney coerces the balance field, defaulting to zero.
func (r PartnerRequest) BalanceMoney() types.Money {
	return types.CoerceMoney(r.CreditBalance, types.Zero())
}

// PriceOverrideRequest sets a per-partner price.
type PriceOverrideRequest struct {
	PartnerID string `json:"partnerId" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Price     string `json:"price" binding:"required"`
}
