// Package partner provides the trading partner catalog.
// Customers and suppliers share one table, distinguished by a role flag, each
// carrying an independent running credit balance.
package partner

import (
	"context"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/types"
)

// Role distinguishes the trading direction of a partner.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
)

// Partner represents a customer or supplier.
type Partner struct {
	entity.Catalog

	// Contact is free-form contact information
	Contact string `db:"contact" json:"contact,omitempty"`

	// CreditBalance is the net amount owed by (customer) or owed to
	// (supplier) the business. This is the only persisted representation of
	// the running balance: no delta ledger is kept.
	CreditBalance types.Money `db:"credit_balance" json:"creditBalance"`

	// Role is customer or supplier
	Role Role `db:"role" json:"role"`
}

// NewPartner creates a new partner.
func NewPartner(name, contact string, balance types.Money, role Role) *Partner {
	return &Partner{
		Catalog:       entity.NewCatalog(name),
		Contact:       contact,
		CreditBalance: balance,
		Role:          role,
	}
}

// Validate implements entity.Validatable.
func (p *Partner) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Role != RoleCustomer && p.Role != RoleSupplier {
		return apperror.NewValidation("invalid partner role").
			WithDetail("field", "role").
			WithDetail("value", string(p.Role))
	}

	return nil
}

// IsCustomer returns true for customers.
func (p *Partner) IsCustomer() bool { return p.Role == RoleCustomer }

// IsSupplier returns true for suppliers.
func (p *Partner) IsSupplier() bool { return p.Role == RoleSupplier }
