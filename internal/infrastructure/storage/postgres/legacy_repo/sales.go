// Package legacy_repo reads the compatibility views that mirror the old
// schema (sales, sale_items). External tooling still consumes these shapes;
// nothing in the application writes through them.
package legacy_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/infrastructure/storage/postgres"
)

// Sale is one row of the legacy sales view.
type Sale struct {
	ID             id.ID       `db:"id" json:"id"`
	Number         string      `db:"number" json:"number"`
	Date           time.Time   `db:"date" json:"date"`
	CustomerName   string      `db:"customer_name" json:"customer_name"`
	TotalAmount    types.Money `db:"total_amount" json:"total_amount"`
	CashReceived   types.Money `db:"cash_received" json:"cash_received"`
	PreviousCredit types.Money `db:"previous_credit" json:"previous_credit"`
	UpdatedCredit  types.Money `db:"updated_credit" json:"updated_credit"`
	Synced         bool        `db:"synced" json:"synced"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// SaleItem is one row of the legacy sale_items view.
// Quantity is already descaled to a plain decimal by the view.
type SaleItem struct {
	ID          id.ID       `db:"id" json:"id"`
	SaleID      id.ID       `db:"sale_id" json:"sale_id"`
	ProductName string      `db:"product_name" json:"product_name"`
	Quantity    types.Money `db:"quantity" json:"quantity"`
	Price       types.Money `db:"price" json:"price"`
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
}

// SalesRepo reads the legacy views.
type SalesRepo struct {
	txm *postgres.TxManager
}

// NewSalesRepo creates a new legacy sales reader.
func NewSalesRepo(txm *postgres.TxManager) *SalesRepo {
	return &SalesRepo{txm: txm}
}

func (r *SalesRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SalesForDate retrieves legacy-shaped sales for a business date.
func (r *SalesRepo) SalesForDate(ctx context.Context, date time.Time) ([]Sale, error) {
	q := r.builder().
		Select("id", "number", "date", "customer_name", "total_amount", "cash_received",
			"previous_credit", "updated_credit", "synced", "created_at").
		From("sales").
		Where(squirrel.Eq{"date": date}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("legacy sales: %w", err)
	}

	return sales, nil
}

// ItemsForSale retrieves legacy-shaped items of one sale.
func (r *SalesRepo) ItemsForSale(ctx context.Context, saleID id.ID) ([]SaleItem, error) {
	q := r.builder().
		Select("id", "sale_id", "product_name", "quantity", "price", "subtotal").
		From("sale_items").
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("product_name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []SaleItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("legacy sale items: %w", err)
	}

	return items, nil
}
