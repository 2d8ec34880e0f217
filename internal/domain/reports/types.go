// Package reports provides read-only projections over the ledger: inventory
// valuation, daily transaction detail, period rollups and the cached daily
// summary. No operation here mutates ledger facts.
package reports

import (
	"encoding/json"
	"time"

	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/ledger"
)

// SnapshotSource says which path produced an inventory snapshot.
type SnapshotSource string

const (
	// SourceSnapshots means the daily stock register had rows for the date.
	SourceSnapshots SnapshotSource = "snapshots"
	// SourceMovements means the position was reconstructed from the movement
	// log and current stock. See Service.Snapshot for the validity caveat.
	SourceMovements SnapshotSource = "movements"
)

// ProductPosition is one product's stock position on a date, priced.
type ProductPosition struct {
	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`

	Price types.Money `db:"price" json:"price"`

	Opening     types.Quantity `db:"opening_stock" json:"openingStock"`
	Purchases   types.Quantity `db:"purchases" json:"purchases"`
	Sales       types.Quantity `db:"sales" json:"sales"`
	Adjustments types.Quantity `db:"adjustments" json:"adjustments"`
	Closing     types.Quantity `db:"closing_stock" json:"closingStock"`

	NetChange    types.Quantity `db:"-" json:"netChange"`
	ClosingValue types.Money    `db:"-" json:"closingValue"`
}

// SnapshotTotals are the monetary totals of a snapshot (quantity x price,
// summed over products).
type SnapshotTotals struct {
	OpeningValue     types.Money `json:"openingValue"`
	PurchasesValue   types.Money `json:"purchasesValue"`
	SalesValue       types.Money `json:"salesValue"`
	AdjustmentsValue types.Money `json:"adjustmentsValue"`
	ClosingValue     types.Money `json:"closingValue"`
}

// InventorySnapshot is the inventory position for one business date.
type InventorySnapshot struct {
	Date      time.Time         `json:"date"`
	Source    SnapshotSource    `json:"source"`
	Positions []ProductPosition `json:"positions"`
	Totals    SnapshotTotals    `json:"totals"`
}

// MovementAggregate is the raw material of the fallback path: per-product
// movement sums for a date plus the product's current stock and price.
type MovementAggregate struct {
	ProductID    id.ID          `db:"product_id"`
	ProductName  string         `db:"product_name"`
	Price        types.Money    `db:"price"`
	CurrentStock types.Quantity `db:"current_stock"`
	Purchases    types.Quantity `db:"purchases"`
	Sales        types.Quantity `db:"sales"`
	Adjustments  types.Quantity `db:"adjustments"`
}

// TransactionDetail is one transaction with partner name and named items,
// as consumed by the reporting and sync collaborators.
type TransactionDetail struct {
	Transaction ledger.Transaction `json:"transaction"`
	PartnerName string             `json:"partnerName"`
	Items       []ItemDetail       `json:"items"`
}

// ItemDetail is one line with the product name attached.
type ItemDetail struct {
	ledger.Item
	ProductName string `db:"product_name" json:"productName"`
}

// ProductAggregate is a per-product rollup over a date range.
type ProductAggregate struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ProductName string         `db:"product_name" json:"productName"`
	Kind        ledger.Kind    `db:"kind" json:"kind"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Amount      types.Money    `db:"amount" json:"amount"`
}

// PartnerAggregate is a per-partner rollup over a date range.
type PartnerAggregate struct {
	PartnerID    id.ID       `db:"partner_id" json:"partnerId"`
	PartnerName  string      `db:"partner_name" json:"partnerName"`
	Kind         ledger.Kind `db:"kind" json:"kind"`
	Transactions int64       `db:"transactions" json:"transactions"`
	Amount       types.Money `db:"amount" json:"amount"`
	CashSettled  types.Money `db:"cash_settled" json:"cashSettled"`
}

// RangeReport is the result of a range aggregation.
type RangeReport struct {
	FromDate  time.Time          `json:"fromDate"`
	ToDate    time.Time          `json:"toDate"`
	ByProduct []ProductAggregate `json:"byProduct"`
	ByPartner []PartnerAggregate `json:"byPartner"`
}

// DailySummary is the cached per-date rollup. Derived data: it can always be
// recomputed from the ledger, and holds a serialized inventory snapshot for
// the sync collaborator.
type DailySummary struct {
	ID   id.ID     `db:"id" json:"id"`
	Date time.Time `db:"date" json:"date"`

	TotalSales     types.Money `db:"total_sales" json:"totalSales"`
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
	CashReceived   types.Money `db:"cash_received" json:"cashReceived"`

	Inventory json.RawMessage `db:"inventory" json:"inventory"`

	Synced    bool      `db:"synced" json:"synced"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DailyTotals are the monetary sums of one date's transactions.
type DailyTotals struct {
	TotalSales     types.Money `db:"total_sales"`
	TotalPurchases types.Money `db:"total_purchases"`
	CashReceived   types.Money `db:"cash_received"`
}
