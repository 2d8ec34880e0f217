package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain"
	"dairyledger/internal/domain/catalogs/partner"
	"dairyledger/internal/domain/catalogs/product"
	"dairyledger/internal/domain/registers/dailystock"
)

// --- Fakes ---

// fakeTxManager runs the function directly and records the outcome. Rollback
// semantics are asserted through the error path, not through state undo.
type fakeTxManager struct {
	calls      int
	committed  int
	rolledBack int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if err := fn(ctx); err != nil {
		m.rolledBack++
		return err
	}
	m.committed++
	return nil
}

type fakeLedgerRepo struct {
	headers map[id.ID]*Transaction
	items   map[id.ID][]Item

	createErr    error
	saveItemsErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		headers: make(map[id.ID]*Transaction),
		items:   make(map[id.ID][]Item),
	}
}

func (r *fakeLedgerRepo) Create(ctx context.Context, t *Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *t
	r.headers[t.ID] = &clone
	return nil
}

func (r *fakeLedgerRepo) SaveItems(ctx context.Context, transactionID id.ID, items []Item) error {
	if r.saveItemsErr != nil {
		return r.saveItemsErr
	}
	r.items[transactionID] = append([]Item(nil), items...)
	return nil
}

func (r *fakeLedgerRepo) GetByID(ctx context.Context, txID id.ID) (*Transaction, error) {
	t, ok := r.headers[txID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", txID)
	}
	clone := *t
	return &clone, nil
}

func (r *fakeLedgerRepo) GetItems(ctx context.Context, txID id.ID) ([]Item, error) {
	return r.items[txID], nil
}

// ListByDate matches on exact equality, like the DATE column it stands in
// for: a non-midnight timestamp matches nothing.
func (r *fakeLedgerRepo) ListByDate(ctx context.Context, date time.Time, kind *Kind) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range r.headers {
		if !t.Date.Equal(date) {
			continue
		}
		if kind != nil && t.Kind != *kind {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeLedgerRepo) ListUnsynced(ctx context.Context, limit int) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range r.headers {
		if !t.Synced {
			clone := *t
			out = append(out, &clone)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) MarkSynced(ctx context.Context, ids []id.ID) error {
	for _, txID := range ids {
		if t, ok := r.headers[txID]; ok {
			t.Synced = true
		}
	}
	return nil
}

type fakeProductRepo struct {
	byID map[id.ID]*product.Product

	updateStockErr error
	stockUpdates   int
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	r := &fakeProductRepo{byID: make(map[id.ID]*product.Product)}
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.byID[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (r *fakeProductRepo) GetByName(ctx context.Context, name string) (*product.Product, error) {
	for _, p := range r.byID {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", name)
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Deactivate(ctx context.Context, productID id.ID) error {
	if p, ok := r.byID[productID]; ok {
		p.Active = false
	}
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return domain.ListResult[*product.Product]{}, nil
}

func (r *fakeProductRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := r.GetByName(ctx, name)
	return err == nil, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *fakeProductRepo) UpdateStock(ctx context.Context, productID id.ID, stock types.Quantity) error {
	if r.updateStockErr != nil {
		return r.updateStockErr
	}
	p, ok := r.byID[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.CurrentStock = stock
	r.stockUpdates++
	return nil
}

type fakePartnerRepo struct {
	byID map[id.ID]*partner.Partner

	creditErr     error
	creditUpdates int
}

func newFakePartnerRepo(partners ...*partner.Partner) *fakePartnerRepo {
	r := &fakePartnerRepo{byID: make(map[id.ID]*partner.Partner)}
	for _, p := range partners {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakePartnerRepo) Create(ctx context.Context, p *partner.Partner) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) GetByID(ctx context.Context, partnerID id.ID) (*partner.Partner, error) {
	p, ok := r.byID[partnerID]
	if !ok {
		return nil, apperror.NewNotFound("partner", partnerID)
	}
	return p, nil
}

func (r *fakePartnerRepo) GetByName(ctx context.Context, name string) (*partner.Partner, error) {
	for _, p := range r.byID {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("partner", name)
}

func (r *fakePartnerRepo) Update(ctx context.Context, p *partner.Partner) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) Deactivate(ctx context.Context, partnerID id.ID) error {
	if p, ok := r.byID[partnerID]; ok {
		p.Active = false
	}
	return nil
}

func (r *fakePartnerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*partner.Partner], error) {
	return domain.ListResult[*partner.Partner]{}, nil
}

func (r *fakePartnerRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := r.GetByName(ctx, name)
	return err == nil, nil
}

func (r *fakePartnerRepo) GetForUpdate(ctx context.Context, partnerID id.ID) (*partner.Partner, error) {
	return r.GetByID(ctx, partnerID)
}

func (r *fakePartnerRepo) UpdateCreditBalance(ctx context.Context, partnerID id.ID, balance types.Money) error {
	if r.creditErr != nil {
		return r.creditErr
	}
	p, ok := r.byID[partnerID]
	if !ok {
		return apperror.NewNotFound("partner", partnerID)
	}
	p.CreditBalance = balance
	r.creditUpdates++
	return nil
}

func (r *fakePartnerRepo) ListByRole(ctx context.Context, role partner.Role, filter domain.ListFilter) (domain.ListResult[*partner.Partner], error) {
	return domain.ListResult[*partner.Partner]{}, nil
}

type fakeStockRepo struct {
	movements []entity.StockMovement
	snapshots map[string]*entity.DailyStock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{snapshots: make(map[string]*entity.DailyStock)}
}

func snapKey(date time.Time, productID id.ID) string {
	return date.Format("2006-01-02") + "/" + productID.String()
}

func (r *fakeStockRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeStockRepo) MovementsForDate(ctx context.Context, date time.Time) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *fakeStockRepo) MovementHistory(ctx context.Context, productID id.ID, filter dailystock.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) GetSnapshot(ctx context.Context, date time.Time, productID id.ID) (*entity.DailyStock, error) {
	snap, ok := r.snapshots[snapKey(date, productID)]
	if !ok {
		return nil, apperror.NewNotFound("daily stock", productID)
	}
	clone := *snap
	return &clone, nil
}

func (r *fakeStockRepo) InsertSnapshot(ctx context.Context, snap *entity.DailyStock) error {
	clone := *snap
	r.snapshots[snapKey(snap.Date, snap.ProductID)] = &clone
	return nil
}

func (r *fakeStockRepo) UpdateSnapshot(ctx context.Context, snap *entity.DailyStock) error {
	clone := *snap
	r.snapshots[snapKey(snap.Date, snap.ProductID)] = &clone
	return nil
}

func (r *fakeStockRepo) SnapshotsForDate(ctx context.Context, date time.Time) ([]entity.DailyStock, error) {
	var out []entity.DailyStock
	for _, s := range r.snapshots {
		if s.Date.Equal(date) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeNumerator struct {
	next int
}

func (n *fakeNumerator) NextNumber(ctx context.Context, prefix string, period time.Time) (string, error) {
	n.next++
	return fmt.Sprintf("%s-%d-%05d", prefix, period.Year(), n.next), nil
}

// --- Fixture ---

type fixture struct {
	service   *Service
	ledger    *fakeLedgerRepo
	products  *fakeProductRepo
	partners  *fakePartnerRepo
	stockRepo *fakeStockRepo
	txm       *fakeTxManager
}

func newFixture(products []*product.Product, partners []*partner.Partner) *fixture {
	f := &fixture{
		ledger:    newFakeLedgerRepo(),
		products:  newFakeProductRepo(products...),
		partners:  newFakePartnerRepo(partners...),
		stockRepo: newFakeStockRepo(),
		txm:       &fakeTxManager{},
	}
	stockService := dailystock.NewService(f.stockRepo, f.products, f.txm)
	f.service = NewService(f.ledger, stockService, f.products, f.partners, &fakeNumerator{}, f.txm)
	return f
}

var testDate = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// --- Tests ---

func TestRecord_PurchaseThenSale(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Full Cream Milk 1L", types.MustMoney("68"))
	milk.CurrentStock = qty("20")
	supplier := partner.NewPartner("Amul Distributor", "", types.Zero(), partner.RoleSupplier)
	customer := partner.NewPartner("Sharma Store", "", types.MustMoney("100"), partner.RoleCustomer)

	f := newFixture([]*product.Product{milk}, []*partner.Partner{supplier, customer})

	// Purchase 10 units at 50.
	purchase, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindPurchase,
		PartnerID: supplier.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("10"), UnitPrice: money("50")},
		},
		CashSettled:    money("500"),
		PreviousCredit: types.Zero(),
		UpdatedCredit:  types.Zero(),
	})
	require.NoError(t, err)
	assert.Equal(t, "TXN-2026-00001", purchase.Number)
	assert.True(t, money("500").Equal(purchase.TotalAmount))
	assert.Equal(t, qty("30"), milk.CurrentStock)

	// Sell 5 units at 68, fully on credit.
	sale, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("5"), UnitPrice: money("68")},
		},
		CashSettled:    types.Zero(),
		PreviousCredit: money("100"),
		UpdatedCredit:  money("440"),
	})
	require.NoError(t, err)
	assert.True(t, money("340").Equal(sale.TotalAmount))
	assert.Equal(t, qty("25"), milk.CurrentStock)
	assert.True(t, money("440").Equal(customer.CreditBalance))

	// The day's snapshot accumulated both movements.
	snap, err := f.stockRepo.GetSnapshot(ctx, entity.BusinessDate(testDate), milk.ID)
	require.NoError(t, err)
	assert.Equal(t, qty("20"), snap.Opening)
	assert.Equal(t, qty("10"), snap.Purchases)
	assert.Equal(t, qty("5"), snap.Sales)
	assert.Equal(t, qty("25"), snap.Closing)
	require.NoError(t, snap.CheckBalance())

	// Movement signs: purchase positive, sale negative.
	require.Len(t, f.stockRepo.movements, 2)
	assert.Equal(t, qty("10"), f.stockRepo.movements[0].QuantityChange)
	assert.Equal(t, qty("-5"), f.stockRepo.movements[1].QuantityChange)

	assert.Equal(t, 2, f.txm.committed)
	assert.Equal(t, 0, f.txm.rolledBack)
}

func TestRecord_SameProductOnTwoLines(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	milk.CurrentStock = qty("20")
	customer := partner.NewPartner("Customer", "", types.Zero(), partner.RoleCustomer)

	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})

	// The same product twice in one transaction: each line re-reads the
	// running stock, so the day nets out as if it were one combined line.
	tx, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("3"), UnitPrice: money("68")},
			{ProductID: milk.ID, Quantity: qty("2"), UnitPrice: money("68")},
		},
	})
	require.NoError(t, err)

	require.Len(t, tx.Items, 2)
	assert.Equal(t, 1, tx.Items[0].LineNo)
	assert.Equal(t, 2, tx.Items[1].LineNo)
	assert.True(t, money("340").Equal(tx.TotalAmount))

	assert.Equal(t, qty("15"), milk.CurrentStock)
	assert.Equal(t, 2, f.products.stockUpdates)

	// One snapshot row accumulated both lines.
	snap, err := f.stockRepo.GetSnapshot(ctx, entity.BusinessDate(testDate), milk.ID)
	require.NoError(t, err)
	assert.Equal(t, qty("20"), snap.Opening)
	assert.Equal(t, qty("5"), snap.Sales)
	assert.Equal(t, qty("15"), snap.Closing)
	require.NoError(t, snap.CheckBalance())

	require.Len(t, f.stockRepo.movements, 2)
	assert.Equal(t, qty("-3"), f.stockRepo.movements[0].QuantityChange)
	assert.Equal(t, qty("-2"), f.stockRepo.movements[1].QuantityChange)
}

func TestRecord_NegativeStockAllowed(t *testing.T) {
	ctx := context.Background()

	curd := product.NewProduct("Curd 500g", types.MustMoney("45"))
	curd.CurrentStock = qty("2")
	customer := partner.NewPartner("Walk-in", "", types.Zero(), partner.RoleCustomer)

	f := newFixture([]*product.Product{curd}, []*partner.Partner{customer})

	_, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: curd.ID, Quantity: qty("5"), UnitPrice: money("45")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, qty("-3"), curd.CurrentStock)
}

func TestRecord_FailureRollsBack(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	milk.CurrentStock = qty("20")
	customer := partner.NewPartner("Customer", "", types.Zero(), partner.RoleCustomer)

	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})
	f.ledger.saveItemsErr = errors.New("copy failed")

	_, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("5"), UnitPrice: money("68")},
		},
	})
	require.Error(t, err)

	// The transaction function failed before any stock or credit effect, and
	// the manager saw the error (rollback path).
	assert.Equal(t, 1, f.txm.rolledBack)
	assert.Equal(t, 0, f.txm.committed)
	assert.Equal(t, qty("20"), milk.CurrentStock)
	assert.Equal(t, 0, f.partners.creditUpdates)
	assert.Empty(t, f.stockRepo.movements)
}

func TestRecord_CreditFailureAfterStock(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	customer := partner.NewPartner("Customer", "", types.Zero(), partner.RoleCustomer)

	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})
	f.partners.creditErr = errors.New("deadlock")

	_, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("1"), UnitPrice: money("68")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, 1, f.txm.rolledBack)
	assert.Equal(t, 0, f.txm.committed)
}

func TestRecord_RoleMismatch(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	supplier := partner.NewPartner("Distributor", "", types.Zero(), partner.RoleSupplier)

	f := newFixture([]*product.Product{milk}, []*partner.Partner{supplier})

	// Selling to a supplier is rejected before anything is written.
	_, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: supplier.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("1"), UnitPrice: money("68")},
		},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRoleMismatch, appErr.Code)
	assert.Equal(t, 0, f.txm.calls)
}

func TestRecord_InactivePartner(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	customer := partner.NewPartner("Closed Shop", "", types.Zero(), partner.RoleCustomer)
	customer.Active = false

	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})

	_, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("1"), UnitPrice: money("68")},
		},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestRecord_CreateIfMissing(t *testing.T) {
	ctx := context.Background()

	f := newFixture(nil, nil)

	tx, err := f.service.Record(ctx, RecordRequest{
		Date:        testDate,
		Kind:        KindSale,
		PartnerName: "New Customer",
		Contact:     "98xxxxxx99",
		Items: []RecordItem{
			{ProductName: "Paneer 200g", Quantity: qty("2"), UnitPrice: money("95")},
		},
	})
	require.NoError(t, err)

	// Both the partner and the product were created on the fly.
	p, err := f.partners.GetByName(ctx, "New Customer")
	require.NoError(t, err)
	assert.Equal(t, partner.RoleCustomer, p.Role)
	assert.Equal(t, p.ID, tx.PartnerID)

	prod, err := f.products.GetByName(ctx, "Paneer 200g")
	require.NoError(t, err)
	assert.True(t, money("95").Equal(prod.Price))
	assert.Equal(t, qty("-2"), prod.CurrentStock)
}

func TestRecord_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)

	_, err := f.service.Record(ctx, RecordRequest{Date: testDate, Kind: Kind("transfer")})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.service.Record(ctx, RecordRequest{Date: testDate, Kind: KindSale})
	assert.True(t, apperror.IsValidation(err), "empty items")

	_, err = f.service.Record(ctx, RecordRequest{
		Date: testDate,
		Kind: KindSale,
		Items: []RecordItem{
			{ProductName: "Milk", Quantity: qty("-1"), UnitPrice: money("10")},
		},
	})
	assert.True(t, apperror.IsValidation(err), "negative quantity")
}

func TestMarkSynced_And_ListUnsynced(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	customer := partner.NewPartner("Customer", "", types.Zero(), partner.RoleCustomer)
	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})

	tx, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("1"), UnitPrice: money("68")},
		},
	})
	require.NoError(t, err)

	unsynced, err := f.service.ListUnsynced(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)

	require.NoError(t, f.service.MarkSynced(ctx, []id.ID{tx.ID}))

	unsynced, err = f.service.ListUnsynced(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func TestGetByID_AttachesItems(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	customer := partner.NewPartner("Customer", "", types.Zero(), partner.RoleCustomer)
	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})

	tx, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("2"), UnitPrice: money("68")},
		},
	})
	require.NoError(t, err)

	got, err := f.service.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, milk.ID, got.Items[0].ProductID)
}

func TestListByDate_NormalizesTimestamp(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	customer := partner.NewPartner("Customer", "", types.Zero(), partner.RoleCustomer)
	f := newFixture([]*product.Product{milk}, []*partner.Partner{customer})

	_, err := f.service.Record(ctx, RecordRequest{
		Date:      testDate,
		Kind:      KindSale,
		PartnerID: customer.ID,
		Items: []RecordItem{
			{ProductID: milk.ID, Quantity: qty("1"), UnitPrice: money("68")},
		},
	})
	require.NoError(t, err)

	// Headers are keyed by civil date; a mid-day timestamp must still find them.
	list, err := f.service.ListByDate(ctx, testDate.Add(7*time.Hour+30*time.Minute), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)
}
