package entity

import (
	"context"

	"dairyledger/internal/core/apperror"
)

// Catalog is the base type for master data (products, partners).
// Catalog entities are keyed by a unique name and support idempotent
// create-or-update by that name.
type Catalog struct {
	BaseCatalog

	// Name is the unique display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Name:        name,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
