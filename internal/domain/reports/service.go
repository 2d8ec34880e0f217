package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/ledger"
	"dairyledger/pkg/logger"
)

// Service provides valuation and query operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Snapshot answers "what was the inventory position on date" with monetary
// totals per accumulated field.
//
// Primary path: daily stock rows joined to prices. Fallback, taken only when
// the register has no rows for the date (historical data loaded without
// snapshots): per-product movement sums with the product's CURRENT stock as
// closing and opening derived backwards. The reconstruction is correct only
// when date is the most recent date with movements for the product; for
// earlier dates current stock already includes later movements and the
// derived opening is wrong. The Source field tells callers which path ran.
func (s *Service) Snapshot(ctx context.Context, date time.Time) (*InventorySnapshot, error) {
	date = entity.BusinessDate(date)

	positions, err := s.repo.SnapshotPositions(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("snapshot positions: %w", err)
	}

	source := SourceSnapshots
	if len(positions) == 0 {
		positions, err = s.fallbackPositions(ctx, date)
		if err != nil {
			return nil, err
		}
		source = SourceMovements
	}

	snap := &InventorySnapshot{
		Date:      date,
		Source:    source,
		Positions: positions,
	}
	s.price(snap)
	return snap, nil
}

// fallbackPositions reconstructs positions from the movement log.
// opening = closing - (purchases - sales + adjustments), closing = current stock.
func (s *Service) fallbackPositions(ctx context.Context, date time.Time) ([]ProductPosition, error) {
	aggs, err := s.repo.MovementAggregates(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("movement aggregates: %w", err)
	}

	positions := make([]ProductPosition, 0, len(aggs))
	for _, a := range aggs {
		closing := a.CurrentStock
		opening := closing - (a.Purchases - a.Sales + a.Adjustments)
		positions = append(positions, ProductPosition{
			ProductID:   a.ProductID,
			ProductName: a.ProductName,
			Price:       a.Price,
			Opening:     opening,
			Purchases:   a.Purchases,
			Sales:       a.Sales,
			Adjustments: a.Adjustments,
			Closing:     closing,
		})
	}
	return positions, nil
}

// price fills the derived fields and the monetary totals.
func (s *Service) price(snap *InventorySnapshot) {
	totals := SnapshotTotals{
		OpeningValue:     types.Zero(),
		PurchasesValue:   types.Zero(),
		SalesValue:       types.Zero(),
		AdjustmentsValue: types.Zero(),
		ClosingValue:     types.Zero(),
	}

	for i := range snap.Positions {
		p := &snap.Positions[i]
		p.NetChange = p.Closing - p.Opening
		p.ClosingValue = p.Price.Mul(p.Closing.Decimal())

		totals.OpeningValue = totals.OpeningValue.Add(p.Price.Mul(p.Opening.Decimal()))
		totals.PurchasesValue = totals.PurchasesValue.Add(p.Price.Mul(p.Purchases.Decimal()))
		totals.SalesValue = totals.SalesValue.Add(p.Price.Mul(p.Sales.Decimal()))
		totals.AdjustmentsValue = totals.AdjustmentsValue.Add(p.Price.Mul(p.Adjustments.Decimal()))
		totals.ClosingValue = totals.ClosingValue.Add(p.ClosingValue)
	}

	snap.Totals = totals
}

// DailyDetail retrieves a date's transactions with partner and product names,
// headers in creation order, items in line order.
func (s *Service) DailyDetail(ctx context.Context, date time.Time, kind *ledger.Kind) ([]TransactionDetail, error) {
	return s.repo.DailyDetail(ctx, entity.BusinessDate(date), kind)
}

// RangeAggregate rolls up an inclusive date range per product and per partner.
func (s *Service) RangeAggregate(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	from = entity.BusinessDate(from)
	to = entity.BusinessDate(to)
	if to.Before(from) {
		return nil, apperror.NewValidation("toDate must not precede fromDate").
			WithDetail("fromDate", from.Format("2006-01-02")).
			WithDetail("toDate", to.Format("2006-01-02"))
	}

	byProduct, err := s.repo.RangeByProduct(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("range by product: %w", err)
	}
	byPartner, err := s.repo.RangeByPartner(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("range by partner: %w", err)
	}

	return &RangeReport{
		FromDate:  from,
		ToDate:    to,
		ByProduct: byProduct,
		ByPartner: byPartner,
	}, nil
}

// RecomputeDailySummary derives the summary for a date from the ledger and
// upserts the cache row. Recomputing resets the synced flag: the remote copy
// is stale once the numbers change.
func (s *Service) RecomputeDailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	date = entity.BusinessDate(date)

	totals, err := s.repo.DailyTotals(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}

	snap, err := s.Snapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	inventory, err := json.Marshal(snap)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("marshal inventory: %w", err))
	}

	summary := &DailySummary{
		ID:             id.New(),
		Date:           date,
		TotalSales:     totals.TotalSales,
		TotalPurchases: totals.TotalPurchases,
		CashReceived:   totals.CashReceived,
		Inventory:      inventory,
		Synced:         false,
		UpdatedAt:      time.Now().UTC(),
	}

	if err := s.repo.UpsertDailySummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("upsert daily summary: %w", err)
	}

	logger.Info(ctx, "daily summary recomputed",
		"date", date.Format("2006-01-02"),
		"total_sales", summary.TotalSales.String(),
		"total_purchases", summary.TotalPurchases.String(),
	)

	return summary, nil
}

// DailySummary retrieves the cached summary for a date.
func (s *Service) DailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	return s.repo.GetDailySummary(ctx, entity.BusinessDate(date))
}

// MarkSummarySynced flips the synced flag after a successful remote push.
func (s *Service) MarkSummarySynced(ctx context.Context, date time.Time) error {
	return s.repo.MarkSummarySynced(ctx, entity.BusinessDate(date))
}
