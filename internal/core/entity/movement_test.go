package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
)

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func TestDailyStock_Accumulate(t *testing.T) {
	date := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	snap := NewDailyStock(date, id.New(), qty("20"))

	assert.Equal(t, qty("20"), snap.Opening)
	assert.Equal(t, qty("20"), snap.Closing)

	snap.Accumulate(MovementPurchase, qty("10"))
	assert.Equal(t, qty("30"), snap.Closing)

	snap.Accumulate(MovementSale, qty("5"))
	assert.Equal(t, qty("25"), snap.Closing)

	snap.Accumulate(MovementAdjustment, qty("-2.5"))
	assert.Equal(t, qty("22.5"), snap.Closing)

	assert.Equal(t, qty("10"), snap.Purchases)
	assert.Equal(t, qty("5"), snap.Sales)
	assert.Equal(t, qty("-2.5"), snap.Adjustments)
	assert.Equal(t, qty("2.5"), snap.NetChange())
	require.NoError(t, snap.CheckBalance())
}

func TestDailyStock_CheckBalance(t *testing.T) {
	snap := NewDailyStock(time.Now(), id.New(), qty("10"))
	snap.Accumulate(MovementSale, qty("3"))
	require.NoError(t, snap.CheckBalance())

	// A closing value not derivable from the accumulators is a desync.
	snap.Closing = qty("100")
	assert.Error(t, snap.CheckBalance())
}

func TestBusinessDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	stamp := time.Date(2026, 3, 14, 23, 45, 0, 0, loc)

	// 23:45 IST is 18:15 UTC on the same civil date.
	d := BusinessDate(stamp)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.UTC, d.Location())
}

func TestNewStockMovement(t *testing.T) {
	txID := id.New()
	productID := id.New()
	m := NewStockMovement(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC), productID, qty("-5"), &txID, MovementSale, "sale TXN-2026-00001")

	assert.False(t, id.IsNil(m.LineID))
	assert.Equal(t, productID, m.ProductID)
	assert.Equal(t, qty("-5"), m.QuantityChange)
	assert.Equal(t, MovementSale, m.Type)
	require.NotNil(t, m.TransactionID)
	assert.Equal(t, txID, *m.TransactionID)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), m.Date)
}

func TestMovementType_Valid(t *testing.T) {
	assert.True(t, MovementSale.Valid())
	assert.True(t, MovementPurchase.Valid())
	assert.True(t, MovementAdjustment.Valid())
	assert.False(t, MovementType("transfer").Valid())
}
