package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain"
	"dairyledger/internal/domain/catalogs/partner"
	"dairyledger/internal/infrastructure/storage/postgres"
)

const partnerTable = "partners"

// Compile-time check.
var _ partner.Repository = (*PartnerRepo)(nil)

// PartnerRepo implements partner.Repository.
type PartnerRepo struct {
	*BaseCatalogRepo[*partner.Partner]
	txm *postgres.TxManager
}

// NewPartnerRepo creates a new partner repository.
func NewPartnerRepo(txm *postgres.TxManager) *PartnerRepo {
	return &PartnerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*partner.Partner](
			txm,
			partnerTable,
			postgres.ExtractDBColumns[partner.Partner](),
			func() *partner.Partner { return &partner.Partner{} },
		),
		txm: txm,
	}
}

// UpdateCreditBalance writes the new running balance. Callers hold the row
// lock from GetForUpdate inside the ledger write.
func (r *PartnerRepo) UpdateCreditBalance(ctx context.Context, partnerID id.ID, balance types.Money) error {
	q := r.Builder().
		Update(partnerTable).
		Set("credit_balance", balance).
		Where(squirrel.Eq{"id": partnerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update balance: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(partnerTable, partnerID.String())
	}

	return nil
}

// ListByRole retrieves active partners with the given role.
func (r *PartnerRepo) ListByRole(ctx context.Context, role partner.Role, filter domain.ListFilter) (domain.ListResult[*partner.Partner], error) {
	result := domain.ListResult[*partner.Partner]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[partner.Partner]()...).
		From(partnerTable).
		Where(squirrel.Eq{"role": role})
	q = r.applyFilter(q, filter)

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list by role: %w", err)
	}

	return result, nil
}
