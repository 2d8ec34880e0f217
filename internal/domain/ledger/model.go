// Package ledger provides the transaction ledger: one recorded sale or
// purchase with its line items, persisted atomically together with its stock
// and credit effects.
package ledger

import (
	"context"
	"time"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/partner"
)

// Kind distinguishes sales from purchases.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// MovementType maps the transaction kind to its stock movement type.
func (k Kind) MovementType() entity.MovementType {
	if k == KindPurchase {
		return entity.MovementPurchase
	}
	return entity.MovementSale
}

// SignedChange returns the stock delta for a line quantity:
// positive for purchases, negative for sales.
func (k Kind) SignedChange(qty types.Quantity) types.Quantity {
	if k == KindPurchase {
		return qty
	}
	return qty.Neg()
}

// RequiredRole returns the partner role that matches the kind.
func (k Kind) RequiredRole() partner.Role {
	if k == KindPurchase {
		return partner.RoleSupplier
	}
	return partner.RoleCustomer
}

func (k Kind) valid() bool {
	return k == KindSale || k == KindPurchase
}

// Transaction is one recorded sale or purchase. Immutable once created:
// there is no edit or delete path in the ledger.
type Transaction struct {
	entity.Document

	// PartnerID references the customer (sale) or supplier (purchase)
	PartnerID id.ID `db:"partner_id" json:"partnerId"`

	// Kind is sale or purchase
	Kind Kind `db:"kind" json:"kind"`

	// TotalAmount is the sum of item subtotals
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// CashSettled is cash received for a sale / paid for a purchase
	CashSettled types.Money `db:"cash_settled" json:"cashSettled"`

	// PreviousCredit is the partner balance snapshot at time of entry
	PreviousCredit types.Money `db:"previous_credit" json:"previousCredit"`

	// UpdatedCredit is the partner balance snapshot after entry
	UpdatedCredit types.Money `db:"updated_credit" json:"updatedCredit"`

	// Synced marks rows already pushed by the remote-sync collaborator
	Synced bool `db:"synced" json:"synced"`

	// Items is the table part
	Items []Item `db:"-" json:"items"`
}

// Item is one line of a transaction.
type Item struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal  types.Money    `db:"subtotal" json:"subtotal"`
}

// NewTransaction creates a transaction for a business date.
func NewTransaction(date time.Time, partnerID id.ID, kind Kind) *Transaction {
	return &Transaction{
		Document:  entity.NewDocument(date),
		PartnerID: partnerID,
		Kind:      kind,
		Items:     make([]Item, 0),
	}
}

// AddItem appends a line and recalculates the total.
// Subtotal is quantity x unit price; the total is always derived from the
// lines so total_amount == sum of subtotals holds for every composed write.
func (t *Transaction) AddItem(productID id.ID, qty types.Quantity, unitPrice types.Money) {
	item := Item{
		LineID:    id.New(),
		LineNo:    len(t.Items) + 1,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(qty.Decimal()),
	}
	t.Items = append(t.Items, item)
	t.recalculateTotal()
}

func (t *Transaction) recalculateTotal() {
	total := types.Zero()
	for _, item := range t.Items {
		total = total.Add(item.Subtotal)
	}
	t.TotalAmount = total
}

// Validate implements entity.Validatable.
func (t *Transaction) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if !t.Kind.valid() {
		return apperror.NewValidation("invalid transaction kind").
			WithDetail("field", "kind").
			WithDetail("value", string(t.Kind))
	}

	if id.IsNil(t.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}

	if len(t.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, item := range t.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// UpdatedCredit computes the running balance after a transaction:
// previous + total - cash settled. The ledger persists the caller-supplied
// value verbatim; this helper is how composing callers derive it.
func UpdatedCredit(previous, total, cash types.Money) types.Money {
	return previous.Add(total).Sub(cash)
}
