// Package report_repo provides the PostgreSQL read projections behind the
// reports service.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/domain/ledger"
	"dairyledger/internal/domain/reports"
	"dairyledger/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ reports.Repository = (*ReportsRepo)(nil)

// ReportsRepo implements reports.Repository.
type ReportsRepo struct {
	txm *postgres.TxManager
}

// NewReportsRepo creates a new reports repository.
func NewReportsRepo(txm *postgres.TxManager) *ReportsRepo {
	return &ReportsRepo{txm: txm}
}

func (r *ReportsRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SnapshotPositions retrieves the daily stock rows for a date joined to
// product name and price.
func (r *ReportsRepo) SnapshotPositions(ctx context.Context, date time.Time) ([]reports.ProductPosition, error) {
	q := r.builder().
		Select(
			"ds.product_id",
			"p.name AS product_name",
			"p.price",
			"ds.opening_stock",
			"ds.purchases",
			"ds.sales",
			"ds.adjustments",
			"ds.closing_stock",
		).
		From("daily_stock ds").
		Join("products p ON p.id = ds.product_id").
		Where(squirrel.Eq{"ds.date": date}).
		OrderBy("p.name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var positions []reports.ProductPosition
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &positions, sql, args...); err != nil {
		return nil, fmt.Errorf("snapshot positions: %w", err)
	}

	return positions, nil
}

// MovementAggregates sums the movement log for a date per product.
// Sales movements carry negative quantity_change, so the sum is negated to
// yield the positive accumulator the reconstruction expects.
func (r *ReportsRepo) MovementAggregates(ctx context.Context, date time.Time) ([]reports.MovementAggregate, error) {
	q := r.builder().
		Select(
			"m.product_id",
			"p.name AS product_name",
			"p.price",
			"p.current_stock",
			"COALESCE(SUM(CASE WHEN m.movement_type = 'purchase' THEN m.quantity_change ELSE 0 END), 0) AS purchases",
			"COALESCE(-SUM(CASE WHEN m.movement_type = 'sale' THEN m.quantity_change ELSE 0 END), 0) AS sales",
			"COALESCE(SUM(CASE WHEN m.movement_type = 'adjustment' THEN m.quantity_change ELSE 0 END), 0) AS adjustments",
		).
		From("stock_movements m").
		Join("products p ON p.id = m.product_id").
		Where(squirrel.Eq{"m.date": date}).
		GroupBy("m.product_id", "p.name", "p.price", "p.current_stock").
		OrderBy("p.name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var aggs []reports.MovementAggregate
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &aggs, sql, args...); err != nil {
		return nil, fmt.Errorf("movement aggregates: %w", err)
	}

	return aggs, nil
}

// detailRow carries one header with the partner name for scanning.
type detailRow struct {
	ledger.Transaction
	PartnerName string `db:"partner_name"`
}

// DailyDetail retrieves transactions for a date with partner and product
// names, headers in creation order, items in line order.
func (r *ReportsRepo) DailyDetail(ctx context.Context, date time.Time, kind *ledger.Kind) ([]reports.TransactionDetail, error) {
	headerCols := make([]string, 0, 16)
	for _, col := range postgres.ExtractDBColumns[ledger.Transaction]() {
		headerCols = append(headerCols, "t."+col)
	}
	headerCols = append(headerCols, "pa.name AS partner_name")

	hq := r.builder().
		Select(headerCols...).
		From("transactions t").
		Join("partners pa ON pa.id = t.partner_id").
		Where(squirrel.Eq{"t.date": date}).
		OrderBy("t.created_at", "t.number")

	if kind != nil {
		hq = hq.Where(squirrel.Eq{"t.kind": *kind})
	}

	sql, args, err := hq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build headers query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)

	var headers []detailRow
	if err := pgxscan.Select(ctx, querier, &headers, sql, args...); err != nil {
		return nil, fmt.Errorf("daily detail headers: %w", err)
	}
	if len(headers) == 0 {
		return []reports.TransactionDetail{}, nil
	}

	txIDs := make([]any, 0, len(headers))
	for _, h := range headers {
		txIDs = append(txIDs, h.ID)
	}

	type itemRow struct {
		reports.ItemDetail
		TransactionID string `db:"transaction_id"`
	}

	iq := r.builder().
		Select(
			"i.transaction_id",
			"i.line_id",
			"i.line_no",
			"i.product_id",
			"i.quantity",
			"i.unit_price",
			"i.subtotal",
			"p.name AS product_name",
		).
		From("transaction_items i").
		Join("products p ON p.id = i.product_id").
		Where(squirrel.Eq{"i.transaction_id": txIDs}).
		OrderBy("i.transaction_id", "i.line_no")

	sql, args, err = iq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var itemRows []itemRow
	if err := pgxscan.Select(ctx, querier, &itemRows, sql, args...); err != nil {
		return nil, fmt.Errorf("daily detail items: %w", err)
	}

	itemsByTx := make(map[string][]reports.ItemDetail, len(headers))
	for _, row := range itemRows {
		itemsByTx[row.TransactionID] = append(itemsByTx[row.TransactionID], row.ItemDetail)
	}

	details := make([]reports.TransactionDetail, 0, len(headers))
	for _, h := range headers {
		details = append(details, reports.TransactionDetail{
			Transaction: h.Transaction,
			PartnerName: h.PartnerName,
			Items:       itemsByTx[h.ID.String()],
		})
	}

	return details, nil
}

// RangeByProduct rolls up quantity and amount per (product, kind).
func (r *ReportsRepo) RangeByProduct(ctx context.Context, from, to time.Time) ([]reports.ProductAggregate, error) {
	q := r.builder().
		Select(
			"i.product_id",
			"p.name AS product_name",
			"t.kind",
			"COALESCE(SUM(i.quantity), 0) AS quantity",
			"COALESCE(SUM(i.subtotal), 0) AS amount",
		).
		From("transaction_items i").
		Join("transactions t ON t.id = i.transaction_id").
		Join("products p ON p.id = i.product_id").
		Where(squirrel.GtOrEq{"t.date": from}).
		Where(squirrel.LtOrEq{"t.date": to}).
		GroupBy("i.product_id", "p.name", "t.kind").
		OrderBy("p.name", "t.kind")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var aggs []reports.ProductAggregate
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &aggs, sql, args...); err != nil {
		return nil, fmt.Errorf("range by product: %w", err)
	}

	return aggs, nil
}

// RangeByPartner rolls up amount and cash per (partner, kind).
func (r *ReportsRepo) RangeByPartner(ctx context.Context, from, to time.Time) ([]reports.PartnerAggregate, error) {
	q := r.builder().
		Select(
			"t.partner_id",
			"pa.name AS partner_name",
			"t.kind",
			"COUNT(*) AS transactions",
			"COALESCE(SUM(t.total_amount), 0) AS amount",
			"COALESCE(SUM(t.cash_settled), 0) AS cash_settled",
		).
		From("transactions t").
		Join("partners pa ON pa.id = t.partner_id").
		Where(squirrel.GtOrEq{"t.date": from}).
		Where(squirrel.LtOrEq{"t.date": to}).
		GroupBy("t.partner_id", "pa.name", "t.kind").
		OrderBy("pa.name", "t.kind")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var aggs []reports.PartnerAggregate
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &aggs, sql, args...); err != nil {
		return nil, fmt.Errorf("range by partner: %w", err)
	}

	return aggs, nil
}

// DailyTotals sums one date's transaction amounts by kind.
// Cash received counts only sales; purchase settlements are cash paid out.
func (r *ReportsRepo) DailyTotals(ctx context.Context, date time.Time) (reports.DailyTotals, error) {
	q := r.builder().
		Select(
			"COALESCE(SUM(CASE WHEN kind = 'sale' THEN total_amount ELSE 0 END), 0) AS total_sales",
			"COALESCE(SUM(CASE WHEN kind = 'purchase' THEN total_amount ELSE 0 END), 0) AS total_purchases",
			"COALESCE(SUM(CASE WHEN kind = 'sale' THEN cash_settled ELSE 0 END), 0) AS cash_received",
		).
		From("transactions").
		Where(squirrel.Eq{"date": date})

	sql, args, err := q.ToSql()
	if err != nil {
		return reports.DailyTotals{}, fmt.Errorf("build query: %w", err)
	}

	var totals reports.DailyTotals
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &totals, sql, args...); err != nil {
		return reports.DailyTotals{}, fmt.Errorf("daily totals: %w", err)
	}

	return totals, nil
}

// GetDailySummary retrieves the cached summary for a date.
func (r *ReportsRepo) GetDailySummary(ctx context.Context, date time.Time) (*reports.DailySummary, error) {
	q := r.builder().
		Select("id", "date", "total_sales", "total_purchases", "cash_received", "inventory", "synced", "updated_at").
		From("daily_summary").
		Where(squirrel.Eq{"date": date}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var summary reports.DailySummary
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &summary, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("daily_summary", date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get daily summary: %w", err)
	}

	return &summary, nil
}

// UpsertDailySummary creates or replaces the cached summary for its date.
func (r *ReportsRepo) UpsertDailySummary(ctx context.Context, summary *reports.DailySummary) error {
	q := r.builder().
		Insert("daily_summary").
		Columns("id", "date", "total_sales", "total_purchases", "cash_received", "inventory", "synced", "updated_at").
		Values(summary.ID, summary.Date, summary.TotalSales, summary.TotalPurchases, summary.CashReceived, summary.Inventory, summary.Synced, summary.UpdatedAt).
		Suffix(`ON CONFLICT (date) DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			total_purchases = EXCLUDED.total_purchases,
			cash_received = EXCLUDED.cash_received,
			inventory = EXCLUDED.inventory,
			synced = EXCLUDED.synced,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert daily summary: %w", err)
	}

	return nil
}

// MarkSummarySynced flips the synced flag on a date's summary.
func (r *ReportsRepo) MarkSummarySynced(ctx context.Context, date time.Time) error {
	q := r.builder().
		Update("daily_summary").
		Set("synced", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"date": date})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build mark synced: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark summary synced: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("daily_summary", date.Format("2006-01-02"))
	}

	return nil
}
