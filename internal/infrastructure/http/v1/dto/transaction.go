package dto

import (
	"time"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

// TransactionItemRequest is one requested line. Product is referenced by ID
// or, for create-if-missing, by name.
type TransactionItemRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unitPrice"`
}

// TransactionRequest records a sale or purchase.
//
// UpdatedCredit may be omitted; it is then derived as
// previousCredit + total - cashSettled from the coerced values.
type TransactionRequest struct {
	Date        string                   `json:"date" binding:"required"`
	Kind        string                   `json:"kind" binding:"required"`
	PartnerID   string                   `json:"partnerId"`
	PartnerName string                   `json:"partnerName"`
	Contact     string                   `json:"contact"`
	Items       []TransactionItemRequest `json:"items" binding:"required"`

	CashSettled    string `json:"cashSettled"`
	PreviousCredit string `json:"previousCredit"`
	UpdatedCredit  string `json:"updatedCredit"`

	Notes string `json:"notes"`
}

// ToRecordRequest converts the payload into a ledger request.
func (r TransactionRequest) ToRecordRequest() (ledger.RecordRequest, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return ledger.RecordRequest{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("date", r.Date)
	}

	req := ledger.RecordRequest{
		Date:        date,
		Kind:        ledger.Kind(r.Kind),
		PartnerName: r.PartnerName,
		Contact:     r.Contact,
		Notes:       r.Notes,
	}

	if r.PartnerID != "" {
		partnerID, err := id.Parse(r.PartnerID)
		if err != nil {
			return ledger.RecordRequest{}, apperror.NewValidation("invalid partnerId format")
		}
		req.PartnerID = partnerID
	}

	total := types.Zero()
	for i, item := range r.Items {
		recItem := ledger.RecordItem{
			ProductName: item.ProductName,
			Quantity:    types.CoerceQuantity(item.Quantity, 0),
			UnitPrice:   types.CoerceMoney(item.UnitPrice, types.Zero()),
		}
		if item.ProductID != "" {
			productID, err := id.Parse(item.ProductID)
			if err != nil {
				return ledger.RecordRequest{}, apperror.NewValidation("invalid productId format").
					WithDetail("lineNo", i+1)
			}
			recItem.ProductID = productID
		}
		req.Items = append(req.Items, recItem)
		total = total.Add(recItem.UnitPrice.Mul(recItem.Quantity.Decimal()))
	}

	req.CashSettled = types.CoerceMoney(r.CashSettled, types.Zero())
	req.PreviousCredit = types.CoerceMoney(r.PreviousCredit, types.Zero())
	if r.UpdatedCredit != "" {
		req.UpdatedCredit = types.CoerceMoney(r.UpdatedCredit, types.Zero())
	} else {
		req.UpdatedCredit = ledger.UpdatedCredit(req.PreviousCredit, total, req.CashSettled)
	}

	return req, nil
}

// AdjustmentRequest records a signed stock correction.
type AdjustmentRequest struct {
	Date      string `json:"date" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Delta     string `json:"delta" binding:"required"`
	Notes     string `json:"notes"`
}

// MarkSyncedRequest flags pushed transactions.
type MarkSyncedRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
