// Package dailystock provides the daily stock register: the append-only
// movement log plus the per-(date, product) snapshot it rolls up into.
package dailystock

import (
	"context"
	"time"

	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
)

// Repository defines operations for the daily stock register.
type Repository interface {
	// Movement log (append-only; rows are never mutated or deleted)

	// AppendMovements batch inserts movement rows.
	AppendMovements(ctx context.Context, movements []entity.StockMovement) error

	// MovementsForDate retrieves all movements on a business date in
	// insertion order.
	MovementsForDate(ctx context.Context, date time.Time) ([]entity.StockMovement, error)

	// MovementHistory retrieves movements for a product.
	MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// Daily snapshots (the only ledger rows updated in place)

	// GetSnapshot retrieves the snapshot for (date, product); NotFound if absent.
	GetSnapshot(ctx context.Context, date time.Time, productID id.ID) (*entity.DailyStock, error)

	// InsertSnapshot creates the first snapshot of a product on a date.
	InsertSnapshot(ctx context.Context, snap *entity.DailyStock) error

	// UpdateSnapshot overwrites the accumulated fields of an existing snapshot.
	UpdateSnapshot(ctx context.Context, snap *entity.DailyStock) error

	// SnapshotsForDate retrieves all snapshots for a business date.
	SnapshotsForDate(ctx context.Context, date time.Time) ([]entity.DailyStock, error)
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Type     *entity.MovementType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
