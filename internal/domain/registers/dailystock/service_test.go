package dailystock

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
	"dairyledger/internal/domain/catalogs/product"
)

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	movements []entity.StockMovement
	snapshots map[string]*entity.DailyStock
	inserts   int
	updates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{snapshots: make(map[string]*entity.DailyStock)}
}

func key(date time.Time, productID id.ID) string {
	return date.Format("2006-01-02") + "/" + productID.String()
}

func (r *fakeRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeRepo) MovementsForDate(ctx context.Context, date time.Time) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *fakeRepo) MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetSnapshot(ctx context.Context, date time.Time, productID id.ID) (*entity.DailyStock, error) {
	snap, ok := r.snapshots[key(date, productID)]
	if !ok {
		return nil, apperror.NewNotFound("daily stock", productID)
	}
	clone := *snap
	return &clone, nil
}

func (r *fakeRepo) InsertSnapshot(ctx context.Context, snap *entity.DailyStock) error {
	clone := *snap
	r.snapshots[key(snap.Date, snap.ProductID)] = &clone
	r.inserts++
	return nil
}

func (r *fakeRepo) UpdateSnapshot(ctx context.Context, snap *entity.DailyStock) error {
	clone := *snap
	r.snapshots[key(snap.Date, snap.ProductID)] = &clone
	r.updates++
	return nil
}

func (r *fakeRepo) SnapshotsForDate(ctx context.Context, date time.Time) ([]entity.DailyStock, error) {
	var out []entity.DailyStock
	for _, s := range r.snapshots {
		if s.Date.Equal(date) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeProducts struct {
	product.Repository
	p *product.Product
}

func (f *fakeProducts) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return f.p, nil
}

func (f *fakeProducts) UpdateStock(ctx context.Context, productID id.ID, stock types.Quantity) error {
	f.p.CurrentStock = stock
	return nil
}

var testDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestApply_CreatesThenAccumulates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nil, fakeTxManager{})
	productID := id.New()

	// First movement of the day creates the snapshot with opening = preStock.
	require.NoError(t, svc.Apply(ctx, testDate, productID, entity.MovementPurchase, qty("10"), qty("20"), qty("30")))
	assert.Equal(t, 1, repo.inserts)

	snap, err := repo.GetSnapshot(ctx, testDate, productID)
	require.NoError(t, err)
	assert.Equal(t, qty("20"), snap.Opening)
	assert.Equal(t, qty("30"), snap.Closing)

	// Second movement accumulates into the same row.
	require.NoError(t, svc.Apply(ctx, testDate, productID, entity.MovementSale, qty("5"), qty("30"), qty("25")))
	assert.Equal(t, 1, repo.updates)

	snap, err = repo.GetSnapshot(ctx, testDate, productID)
	require.NoError(t, err)
	assert.Equal(t, qty("20"), snap.Opening)
	assert.Equal(t, qty("10"), snap.Purchases)
	assert.Equal(t, qty("5"), snap.Sales)
	assert.Equal(t, qty("25"), snap.Closing)
}

func TestApply_DesyncDetected(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nil, fakeTxManager{})
	productID := id.New()

	// Claimed post-stock does not match opening + change.
	err := svc.Apply(ctx, testDate, productID, entity.MovementPurchase, qty("10"), qty("20"), qty("99"))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSnapshotDesync, appErr.Code)
	assert.Equal(t, 0, repo.inserts)
}

func TestAppend_Validates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nil, fakeTxManager{})

	err := svc.Append(ctx, []entity.StockMovement{
		entity.NewStockMovement(testDate, id.Nil(), qty("1"), nil, entity.MovementAdjustment, ""),
	})
	assert.True(t, apperror.IsValidation(err), "nil product")

	err = svc.Append(ctx, []entity.StockMovement{
		entity.NewStockMovement(testDate, id.New(), qty("0"), nil, entity.MovementAdjustment, ""),
	})
	assert.True(t, apperror.IsValidation(err), "zero change")

	require.NoError(t, svc.Append(ctx, nil))
	assert.Empty(t, repo.movements)
}

func TestRecordAdjustment(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()

	prod := product.NewProduct("Milk", types.MustMoney("68"))
	prod.CurrentStock = qty("10")
	products := &fakeProducts{p: prod}

	svc := NewService(repo, products, fakeTxManager{})

	m, err := svc.RecordAdjustment(ctx, testDate, prod.ID, qty("-2.5"), "spoilage")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustment, m.Type)
	assert.Equal(t, qty("-2.5"), m.QuantityChange)
	assert.Nil(t, m.TransactionID)

	assert.Equal(t, qty("7.5"), prod.CurrentStock)

	snap, err := repo.GetSnapshot(ctx, testDate, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, qty("10"), snap.Opening)
	assert.Equal(t, qty("-2.5"), snap.Adjustments)
	assert.Equal(t, qty("7.5"), snap.Closing)
}

func TestRecordAdjustment_ZeroDelta(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, fakeTxManager{})

	_, err := svc.RecordAdjustment(context.Background(), testDate, id.New(), qty("0"), "")
	assert.True(t, apperror.IsValidation(err))
}
