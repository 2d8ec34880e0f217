// Package ledger_repo provides the PostgreSQL implementation of the
// transaction ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/domain/ledger"
	"dairyledger/internal/infrastructure/storage/postgres"
)

const (
	transactionTable = "transactions"
	itemTable        = "transaction_items"
)

var itemColumns = []string{"line_id", "transaction_id", "line_no", "product_id", "quantity", "unit_price", "subtotal"}

// Compile-time check.
var _ ledger.Repository = (*TransactionRepo)(nil)

// TransactionRepo implements ledger.Repository.
type TransactionRepo struct {
	txm        *postgres.TxManager
	inserter   *postgres.BatchInserter
	selectCols []string
}

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(txm *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		txm:        txm,
		inserter:   postgres.NewBatchInserter(txm),
		selectCols: postgres.ExtractDBColumns[ledger.Transaction](),
	}
}

func (r *TransactionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the transaction header.
func (r *TransactionRepo) Create(ctx context.Context, t *ledger.Transaction) error {
	data := postgres.StructToMap(t)

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder().
		Insert(transactionTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(transactionTable, "number", t.Number).WithCause(err)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

// SaveItems batch inserts the lines via COPY.
func (r *TransactionRepo) SaveItems(ctx context.Context, transactionID id.ID, items []ledger.Item) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.LineID,
			transactionID,
			item.LineNo,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		})
	}

	n, err := r.inserter.CopyFromSlice(ctx, itemTable, itemColumns, rows)
	if err != nil {
		return fmt.Errorf("copy items: %w", err)
	}
	if n != int64(len(items)) {
		return fmt.Errorf("copy items: inserted %d of %d rows", n, len(items))
	}

	return nil
}

// GetByID retrieves a header without items.
func (r *TransactionRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.Transaction, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(transactionTable).
		Where(squirrel.Eq{"id": txID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t ledger.Transaction
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(transactionTable, txID.String())
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &t, nil
}

// GetItems retrieves the lines of a transaction in line order.
func (r *TransactionRepo) GetItems(ctx context.Context, transactionID id.ID) ([]ledger.Item, error) {
	q := r.builder().
		Select("line_id", "line_no", "product_id", "quantity", "unit_price", "subtotal").
		From(itemTable).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []ledger.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// ListByDate retrieves headers for a business date in creation order.
func (r *TransactionRepo) ListByDate(ctx context.Context, date time.Time, kind *ledger.Kind) ([]*ledger.Transaction, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(transactionTable).
		Where(squirrel.Eq{"date": date}).
		OrderBy("created_at", "number")

	if kind != nil {
		q = q.Where(squirrel.Eq{"kind": *kind})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []*ledger.Transaction
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}

	return list, nil
}

// ListUnsynced retrieves headers not yet pushed to the remote copy.
func (r *TransactionRepo) ListUnsynced(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(transactionTable).
		Where(squirrel.Eq{"synced": false}).
		OrderBy("created_at")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []*ledger.Transaction
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list unsynced: %w", err)
	}

	return list, nil
}

// MarkSynced flips the synced flag for a batch of transactions.
func (r *TransactionRepo) MarkSynced(ctx context.Context, ids []id.ID) error {
	q := r.builder().
		Update(transactionTable).
		Set("synced", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build mark synced: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	return nil
}
