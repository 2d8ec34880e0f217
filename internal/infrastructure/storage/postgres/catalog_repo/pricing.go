package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/domain/catalogs/pricing"
	"dairyledger/internal/infrastructure/storage/postgres"
)

const partnerPriceTable = "partner_prices"

// Compile-time check.
var _ pricing.Repository = (*PricingRepo)(nil)

// PricingRepo implements pricing.Repository.
type PricingRepo struct {
	txm *postgres.TxManager
}

// NewPricingRepo creates a new price override repository.
func NewPricingRepo(txm *postgres.TxManager) *PricingRepo {
	return &PricingRepo{txm: txm}
}

func (r *PricingRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Upsert creates or replaces the override for (partner, product).
func (r *PricingRepo) Upsert(ctx context.Context, override pricing.PriceOverride) error {
	q := r.builder().
		Insert(partnerPriceTable).
		Columns("partner_id", "product_id", "price").
		Values(override.PartnerID, override.ProductID, override.Price).
		Suffix("ON CONFLICT (partner_id, product_id) DO UPDATE SET price = EXCLUDED.price")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert price override: %w", err)
	}
	return nil
}

// Get retrieves the override for (partner, product).
func (r *PricingRepo) Get(ctx context.Context, partnerID, productID id.ID) (pricing.PriceOverride, error) {
	var override pricing.PriceOverride

	q := r.builder().
		Select("partner_id", "product_id", "price").
		From(partnerPriceTable).
		Where(squirrel.Eq{"partner_id": partnerID, "product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return override, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &override, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return override, apperror.NewNotFound(partnerPriceTable, partnerID.String())
		}
		return override, fmt.Errorf("get price override: %w", err)
	}

	return override, nil
}

// Delete removes the override for (partner, product).
func (r *PricingRepo) Delete(ctx context.Context, partnerID, productID id.ID) error {
	q := r.builder().
		Delete(partnerPriceTable).
		Where(squirrel.Eq{"partner_id": partnerID, "product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete price override: %w", err)
	}
	return nil
}

// ListForPartner retrieves all overrides for a partner.
func (r *PricingRepo) ListForPartner(ctx context.Context, partnerID id.ID) ([]pricing.PriceOverride, error) {
	q := r.builder().
		Select("partner_id", "product_id", "price").
		From(partnerPriceTable).
		Where(squirrel.Eq{"partner_id": partnerID}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var overrides []pricing.PriceOverride
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &overrides, sql, args...); err != nil {
		return nil, fmt.Errorf("list price overrides: %w", err)
	}

	return overrides, nil
}
