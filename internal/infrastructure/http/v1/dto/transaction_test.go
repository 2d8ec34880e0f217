package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/ledger"
)

func TestToRecordRequest_DerivesUpdatedCredit(t *testing.T) {
	req := TransactionRequest{
		Date:        "2026-03-14",
		Kind:        "sale",
		PartnerName: "Sharma Store",
		Items: []TransactionItemRequest{
			{ProductName: "Milk", Quantity: "2.5", UnitPrice: "68"},
			{ProductName: "Curd", Quantity: "1", UnitPrice: "45"},
		},
		CashSettled:    "100",
		PreviousCredit: "50",
		// UpdatedCredit omitted: derived as 50 + 215 - 100 = 165.
	}

	rec, err := req.ToRecordRequest()
	require.NoError(t, err)

	assert.Equal(t, ledger.KindSale, rec.Kind)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), rec.Date)
	require.Len(t, rec.Items, 2)
	assert.True(t, types.MustMoney("165").Equal(rec.UpdatedCredit), "got %s", rec.UpdatedCredit)
}

func TestToRecordRequest_ExplicitCreditWins(t *testing.T) {
	req := TransactionRequest{
		Date: "2026-03-14",
		Kind: "sale",
		Items: []TransactionItemRequest{
			{ProductName: "Milk", Quantity: "1", UnitPrice: "68"},
		},
		UpdatedCredit: "999.99",
	}

	rec, err := req.ToRecordRequest()
	require.NoError(t, err)
	assert.True(t, types.MustMoney("999.99").Equal(rec.UpdatedCredit))
}

func TestToRecordRequest_LenientNumbers(t *testing.T) {
	req := TransactionRequest{
		Date: "2026-03-14",
		Kind: "purchase",
		Items: []TransactionItemRequest{
			{ProductName: "Milk", Quantity: "10 ltr", UnitPrice: "Rs 50"},
		},
		CashSettled: "garbage",
	}

	rec, err := req.ToRecordRequest()
	require.NoError(t, err)

	q, _ := types.ParseQuantity("10")
	assert.Equal(t, q, rec.Items[0].Quantity)
	assert.True(t, types.MustMoney("50").Equal(rec.Items[0].UnitPrice))
	assert.True(t, rec.CashSettled.IsZero(), "unparseable cash falls back to zero")
}

func TestToRecordRequest_InvalidDate(t *testing.T) {
	req := TransactionRequest{Date: "14-03-2026", Kind: "sale"}

	_, err := req.ToRecordRequest()
	assert.True(t, apperror.IsValidation(err))
}

func TestToRecordRequest_InvalidIDs(t *testing.T) {
	req := TransactionRequest{
		Date:      "2026-03-14",
		Kind:      "sale",
		PartnerID: "not-a-uuid",
	}
	_, err := req.ToRecordRequest()
	assert.True(t, apperror.IsValidation(err))

	req = TransactionRequest{
		Date: "2026-03-14",
		Kind: "sale",
		Items: []TransactionItemRequest{
			{ProductID: "also-not-a-uuid", Quantity: "1"},
		},
	}
	_, err = req.ToRecordRequest()
	assert.True(t, apperror.IsValidation(err))
}
