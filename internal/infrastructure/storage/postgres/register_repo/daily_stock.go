// Package register_repo provides the PostgreSQL implementation of the daily
// stock register: movement log plus per-(date, product) snapshots.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/domain/registers/dailystock"
	"dairyledger/internal/infrastructure/storage/postgres"
)

const (
	movementTable = "stock_movements"
	snapshotTable = "daily_stock"
)

var (
	movementColumns = []string{"line_id", "date", "product_id", "quantity_change", "transaction_id", "movement_type", "notes", "created_at"}
	snapshotColumns = []string{"id", "date", "product_id", "opening_stock", "purchases", "sales", "adjustments", "closing_stock"}
)

// Compile-time check.
var _ dailystock.Repository = (*DailyStockRepo)(nil)

// DailyStockRepo implements dailystock.Repository.
type DailyStockRepo struct {
	txm      *postgres.TxManager
	inserter *postgres.BatchInserter
}

// NewDailyStockRepo creates a new daily stock repository.
func NewDailyStockRepo(txm *postgres.TxManager) *DailyStockRepo {
	return &DailyStockRepo{
		txm:      txm,
		inserter: postgres.NewBatchInserter(txm),
	}
}

func (r *DailyStockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AppendMovements batch inserts movement rows via COPY.
func (r *DailyStockRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.LineID,
			m.Date,
			m.ProductID,
			m.QuantityChange,
			m.TransactionID,
			m.Type,
			m.Notes,
			m.CreatedAt,
		})
	}

	n, err := r.inserter.CopyFromSlice(ctx, movementTable, movementColumns, rows)
	if err != nil {
		return fmt.Errorf("copy movements: %w", err)
	}
	if n != int64(len(movements)) {
		return fmt.Errorf("copy movements: inserted %d of %d rows", n, len(movements))
	}

	return nil
}

// MovementsForDate retrieves all movements on a business date in insertion order.
func (r *DailyStockRepo) MovementsForDate(ctx context.Context, date time.Time) ([]entity.StockMovement, error) {
	q := r.builder().
		Select(movementColumns...).
		From(movementTable).
		Where(squirrel.Eq{"date": date}).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("movements for date: %w", err)
	}

	return movements, nil
}

// MovementHistory retrieves movements for a product, newest first.
func (r *DailyStockRepo) MovementHistory(ctx context.Context, productID id.ID, filter dailystock.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder().
		Select(movementColumns...).
		From(movementTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("date DESC", "created_at DESC")

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("movement history: %w", err)
	}

	return movements, nil
}

// GetSnapshot retrieves the snapshot for (date, product).
func (r *DailyStockRepo) GetSnapshot(ctx context.Context, date time.Time, productID id.ID) (*entity.DailyStock, error) {
	q := r.builder().
		Select(snapshotColumns...).
		From(snapshotTable).
		Where(squirrel.Eq{"date": date, "product_id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var snap entity.DailyStock
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &snap, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(snapshotTable, productID.String())
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return &snap, nil
}

// InsertSnapshot creates the first snapshot of a product on a date.
func (r *DailyStockRepo) InsertSnapshot(ctx context.Context, snap *entity.DailyStock) error {
	q := r.builder().
		Insert(snapshotTable).
		Columns(snapshotColumns...).
		Values(snap.ID, snap.Date, snap.ProductID, snap.Opening, snap.Purchases, snap.Sales, snap.Adjustments, snap.Closing)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(snapshotTable, "date", snap.Date.Format("2006-01-02")).WithCause(err)
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}

	return nil
}

// UpdateSnapshot overwrites the accumulated fields of an existing snapshot.
func (r *DailyStockRepo) UpdateSnapshot(ctx context.Context, snap *entity.DailyStock) error {
	q := r.builder().
		Update(snapshotTable).
		Set("opening_stock", snap.Opening).
		Set("purchases", snap.Purchases).
		Set("sales", snap.Sales).
		Set("adjustments", snap.Adjustments).
		Set("closing_stock", snap.Closing).
		Where(squirrel.Eq{"id": snap.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(snapshotTable, snap.ID.String())
	}

	return nil
}

// SnapshotsForDate retrieves all snapshots for a business date.
func (r *DailyStockRepo) SnapshotsForDate(ctx context.Context, date time.Time) ([]entity.DailyStock, error) {
	q := r.builder().
		Select(snapshotColumns...).
		From(snapshotTable).
		Where(squirrel.Eq{"date": date}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var snaps []entity.DailyStock
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &snaps, sql, args...); err != nil {
		return nil, fmt.Errorf("snapshots for date: %w", err)
	}

	return snaps, nil
}
