package reports

import (
	"context"
	"time"

	"dairyledger/internal/domain/ledger"
)

// Repository defines the read projections and the summary cache.
type Repository interface {
	// SnapshotPositions retrieves the daily stock rows for a date joined to
	// product name and price, ordered by product name. Empty when the
	// register has no rows for the date.
	SnapshotPositions(ctx context.Context, date time.Time) ([]ProductPosition, error)

	// MovementAggregates sums the movement log for a date per product,
	// carrying current stock and price for the reconstruction.
	MovementAggregates(ctx context.Context, date time.Time) ([]MovementAggregate, error)

	// DailyDetail retrieves transactions for a date with partner and product
	// names, headers in creation order, items in line order.
	DailyDetail(ctx context.Context, date time.Time, kind *ledger.Kind) ([]TransactionDetail, error)

	// RangeByProduct rolls up quantity and amount per (product, kind) over an
	// inclusive date range.
	RangeByProduct(ctx context.Context, from, to time.Time) ([]ProductAggregate, error)

	// RangeByPartner rolls up amount and cash per (partner, kind) over an
	// inclusive date range.
	RangeByPartner(ctx context.Context, from, to time.Time) ([]PartnerAggregate, error)

	// DailyTotals sums one date's transaction amounts by kind.
	DailyTotals(ctx context.Context, date time.Time) (DailyTotals, error)

	// GetDailySummary retrieves the cached summary; NotFound if absent.
	GetDailySummary(ctx context.Context, date time.Time) (*DailySummary, error)

	// UpsertDailySummary creates or replaces the cached summary for its date.
	UpsertDailySummary(ctx context.Context, summary *DailySummary) error

	// MarkSummarySynced flips the synced flag on a date's summary.
	MarkSummarySynced(ctx context.Context, date time.Time) error
}
