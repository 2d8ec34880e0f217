package dailystock

import (
	"context"
	"fmt"
	"time"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/tx"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/product"
	"dairyledger/pkg/logger"
)

// Service provides business operations for the daily stock register.
// Apply and Append run inside the caller's transaction (the ledger write);
// RecordAdjustment opens its own.
type Service struct {
	repo      Repository
	products  product.Repository
	txManager tx.Manager
}

// NewService creates a new daily stock service.
func NewService(repo Repository, products product.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

// Append validates and inserts movement rows.
// Must be called within the transaction that caused the movements.
func (s *Service) Append(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if id.IsNil(m.ProductID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: product is required", i))
		}
		if m.QuantityChange.IsZero() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity change must be non-zero", i))
		}
	}

	if err := s.repo.AppendMovements(ctx, movements); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}

	return nil
}

// Apply folds one movement into the (date, product) snapshot.
//
// On the first movement of the day the snapshot is created with
// opening = preStock; afterwards the matching accumulator is bumped. Closing
// is recomputed from opening + purchases - sales + adjustments and must equal
// postStock, the running stock after the movement; a mismatch means movements
// were replayed out of order and the enclosing transaction aborts.
//
// qty carries the positive line quantity for sales and purchases, and the
// signed change for adjustments.
func (s *Service) Apply(ctx context.Context, date time.Time, productID id.ID, mt entity.MovementType, qty types.Quantity, preStock, postStock types.Quantity) error {
	snap, err := s.repo.GetSnapshot(ctx, date, productID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("get snapshot: %w", err)
		}
		snap = entity.NewDailyStock(date, productID, preStock)
		snap.Accumulate(mt, qty)
		if err := s.verify(snap, postStock); err != nil {
			return err
		}
		return s.repo.InsertSnapshot(ctx, snap)
	}

	snap.Accumulate(mt, qty)
	if err := s.verify(snap, postStock); err != nil {
		return err
	}
	return s.repo.UpdateSnapshot(ctx, snap)
}

func (s *Service) verify(snap *entity.DailyStock, postStock types.Quantity) error {
	if err := snap.CheckBalance(); err != nil {
		return err
	}
	if snap.Closing != postStock {
		return apperror.NewSnapshotDesync(snap.ProductID.String(), snap.Date.Format("2006-01-02")).
			WithDetail("closing", snap.Closing.String()).
			WithDetail("running_stock", postStock.String())
	}
	return nil
}

// RecordAdjustment records a signed stock correction outside any transaction
// document: movement row, snapshot and product stock in one atomic unit.
func (s *Service) RecordAdjustment(ctx context.Context, date time.Time, productID id.ID, delta types.Quantity, notes string) (*entity.StockMovement, error) {
	if delta.IsZero() {
		return nil, apperror.NewValidation("adjustment must be non-zero").
			WithDetail("field", "quantityChange")
	}

	movement := entity.NewStockMovement(date, productID, delta, nil, entity.MovementAdjustment, notes)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		preStock := p.CurrentStock
		postStock := preStock + delta

		if err := s.Append(ctx, []entity.StockMovement{movement}); err != nil {
			return err
		}
		if err := s.Apply(ctx, date, productID, entity.MovementAdjustment, delta, preStock, postStock); err != nil {
			return err
		}
		return s.products.UpdateStock(ctx, productID, postStock)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjustment recorded",
		"product_id", productID,
		"delta", delta.String(),
		"date", movement.Date.Format("2006-01-02"),
	)

	return &movement, nil
}

// SnapshotsForDate retrieves all snapshots for a business date.
func (s *Service) SnapshotsForDate(ctx context.Context, date time.Time) ([]entity.DailyStock, error) {
	return s.repo.SnapshotsForDate(ctx, date)
}

// MovementHistory retrieves movements for a product.
func (s *Service) MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.MovementHistory(ctx, productID, filter)
}
