package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/partner"
)

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func money(s string) types.Money {
	return types.MustMoney(s)
}

func TestKind(t *testing.T) {
	assert.Equal(t, entity.MovementSale, KindSale.MovementType())
	assert.Equal(t, entity.MovementPurchase, KindPurchase.MovementType())

	assert.Equal(t, qty("-5"), KindSale.SignedChange(qty("5")))
	assert.Equal(t, qty("5"), KindPurchase.SignedChange(qty("5")))

	assert.Equal(t, partner.RoleCustomer, KindSale.RequiredRole())
	assert.Equal(t, partner.RoleSupplier, KindPurchase.RequiredRole())

	assert.True(t, KindSale.valid())
	assert.True(t, KindPurchase.valid())
	assert.False(t, Kind("transfer").valid())
}

func TestTransaction_AddItem(t *testing.T) {
	tx := NewTransaction(time.Now(), id.New(), KindSale)

	tx.AddItem(id.New(), qty("2.5"), money("68.00"))
	tx.AddItem(id.New(), qty("1"), money("45.00"))

	require.Len(t, tx.Items, 2)
	assert.Equal(t, 1, tx.Items[0].LineNo)
	assert.Equal(t, 2, tx.Items[1].LineNo)

	assert.True(t, money("170").Equal(tx.Items[0].Subtotal), "got %s", tx.Items[0].Subtotal)
	assert.True(t, money("45").Equal(tx.Items[1].Subtotal))

	// The total is always the sum of the line subtotals.
	assert.True(t, money("215").Equal(tx.TotalAmount), "got %s", tx.TotalAmount)
}

func TestTransaction_Validate(t *testing.T) {
	ctx := context.Background()

	valid := NewTransaction(time.Now(), id.New(), KindSale)
	valid.AddItem(id.New(), qty("1"), money("10"))
	require.NoError(t, valid.Validate(ctx))

	noPartner := NewTransaction(time.Now(), id.Nil(), KindSale)
	noPartner.AddItem(id.New(), qty("1"), money("10"))
	assert.True(t, apperror.IsValidation(noPartner.Validate(ctx)))

	noItems := NewTransaction(time.Now(), id.New(), KindPurchase)
	assert.True(t, apperror.IsValidation(noItems.Validate(ctx)))

	badQty := NewTransaction(time.Now(), id.New(), KindSale)
	badQty.AddItem(id.New(), qty("0"), money("10"))
	assert.True(t, apperror.IsValidation(badQty.Validate(ctx)))

	badKind := NewTransaction(time.Now(), id.New(), Kind("transfer"))
	badKind.AddItem(id.New(), qty("1"), money("10"))
	assert.True(t, apperror.IsValidation(badKind.Validate(ctx)))
}

func TestUpdatedCredit(t *testing.T) {
	// Customer owed 100, bought for 250, paid 200 cash: owes 150.
	got := UpdatedCredit(money("100"), money("250"), money("200"))
	assert.True(t, money("150").Equal(got), "got %s", got)

	// Overpayment drives the balance negative.
	got = UpdatedCredit(money("0"), money("50"), money("80"))
	assert.True(t, money("-30").Equal(got))
}
