// Package entity provides core domain entities.
package entity

import (
	"time"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
)

// MovementType classifies a stock movement by its cause.
type MovementType string

const (
	// MovementSale decreases stock (negative quantity change)
	MovementSale MovementType = "sale"
	// MovementPurchase increases stock (positive quantity change)
	MovementPurchase MovementType = "purchase"
	// MovementAdjustment carries any sign (corrections, spoilage, counts)
	MovementAdjustment MovementType = "adjustment"
)

// Valid reports whether mt is one of the known movement types.
func (mt MovementType) Valid() bool {
	switch mt {
	case MovementSale, MovementPurchase, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is one row of the append-only movement log.
// Movements are never mutated or deleted.
type StockMovement struct {
	// LineID is the unique identifier for this movement row (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// Date is the business date of the movement
	Date time.Time `db:"date" json:"date"`

	// ProductID references the moved product
	ProductID id.ID `db:"product_id" json:"productId"`

	// QuantityChange is signed: positive for purchase, negative for sale,
	// any sign for adjustment
	QuantityChange types.Quantity `db:"quantity_change" json:"quantityChange"`

	// TransactionID links back to the causing transaction, nil for adjustments
	TransactionID *id.ID `db:"transaction_id" json:"transactionId,omitempty"`

	// Type is the movement classification
	Type MovementType `db:"movement_type" json:"movementType"`

	// Notes is free text describing the movement
	Notes string `db:"notes" json:"notes,omitempty"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a movement row for a transaction line.
func NewStockMovement(date time.Time, productID id.ID, change types.Quantity, transactionID *id.ID, mt MovementType, notes string) StockMovement {
	return StockMovement{
		LineID:         id.New(),
		Date:           BusinessDate(date),
		ProductID:      productID,
		QuantityChange: change,
		TransactionID:  transactionID,
		Type:           mt,
		Notes:          notes,
		CreatedAt:      time.Now().UTC(),
	}
}

// DailyStock is the per-(date, product) snapshot of stock positions.
// It is the only ledger entity updated in place after creation: movements on
// the same day accumulate into the same row.
type DailyStock struct {
	ID          id.ID          `db:"id" json:"id"`
	Date        time.Time      `db:"date" json:"date"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	Opening     types.Quantity `db:"opening_stock" json:"openingStock"`
	Purchases   types.Quantity `db:"purchases" json:"purchases"`
	Sales       types.Quantity `db:"sales" json:"sales"`
	Adjustments types.Quantity `db:"adjustments" json:"adjustments"`
	Closing     types.Quantity `db:"closing_stock" json:"closingStock"`
}

// NewDailyStock creates a snapshot for the first movement of a product on a
// date. Opening is the product's stock before that movement.
func NewDailyStock(date time.Time, productID id.ID, opening types.Quantity) *DailyStock {
	return &DailyStock{
		ID:        id.New(),
		Date:      BusinessDate(date),
		ProductID: productID,
		Opening:   opening,
		Closing:   opening,
	}
}

// Accumulate folds one movement into the snapshot. Sales and purchases carry
// the positive line quantity; adjustments carry the signed change. Closing is
// recomputed from the accumulated fields rather than carried as an
// independent running value, so the snapshot cannot drift out of balance.
func (d *DailyStock) Accumulate(mt MovementType, qty types.Quantity) {
	switch mt {
	case MovementPurchase:
		d.Purchases += qty
	case MovementSale:
		d.Sales += qty
	default:
		d.Adjustments += qty
	}
	d.Closing = d.Opening + d.Purchases - d.Sales + d.Adjustments
}

// NetChange returns closing minus opening.
func (d *DailyStock) NetChange() types.Quantity {
	return d.Closing - d.Opening
}

// CheckBalance verifies closing == opening + purchases - sales + adjustments.
// Checked after every snapshot write; a violation means movements were
// replayed out of order and the write must abort.
func (d *DailyStock) CheckBalance() error {
	if d.Closing != d.Opening+d.Purchases-d.Sales+d.Adjustments {
		return apperror.NewSnapshotDesync(d.ProductID.String(), d.Date.Format("2006-01-02"))
	}
	return nil
}
