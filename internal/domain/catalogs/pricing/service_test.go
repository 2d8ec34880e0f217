package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/product"
)

type fakeRepo struct {
	overrides map[string]PriceOverride
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{overrides: make(map[string]PriceOverride)}
}

func key(partnerID, productID id.ID) string {
	return partnerID.String() + "/" + productID.String()
}

func (r *fakeRepo) Upsert(ctx context.Context, override PriceOverride) error {
	r.overrides[key(override.PartnerID, override.ProductID)] = override
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, partnerID, productID id.ID) (PriceOverride, error) {
	o, ok := r.overrides[key(partnerID, productID)]
	if !ok {
		return PriceOverride{}, apperror.NewNotFound("price override", productID)
	}
	return o, nil
}

func (r *fakeRepo) Delete(ctx context.Context, partnerID, productID id.ID) error {
	delete(r.overrides, key(partnerID, productID))
	return nil
}

func (r *fakeRepo) ListForPartner(ctx context.Context, partnerID id.ID) ([]PriceOverride, error) {
	var out []PriceOverride
	for _, o := range r.overrides {
		if o.PartnerID == partnerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeProducts struct {
	product.Repository
	p *product.Product
}

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	if f.p != nil && f.p.ID == productID {
		return f.p, nil
	}
	return nil, apperror.NewNotFound("product", productID)
}

func TestPriceFor_OverrideThenBase(t *testing.T) {
	ctx := context.Background()

	milk := product.NewProduct("Milk", types.MustMoney("68"))
	partnerID := id.New()

	repo := newFakeRepo()
	svc := NewService(repo, &fakeProducts{p: milk})

	// No override: base price applies.
	price, err := svc.PriceFor(ctx, partnerID, milk.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("68").Equal(price))

	// Override wins once set.
	require.NoError(t, svc.Set(ctx, partnerID, milk.ID, types.MustMoney("62")))
	price, err = svc.PriceFor(ctx, partnerID, milk.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("62").Equal(price))

	// Removing the override restores the base price.
	require.NoError(t, svc.Remove(ctx, partnerID, milk.ID))
	price, err = svc.PriceFor(ctx, partnerID, milk.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("68").Equal(price))
}

func TestSet_Validates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), &fakeProducts{})

	err := svc.Set(ctx, id.Nil(), id.New(), types.MustMoney("10"))
	assert.True(t, apperror.IsValidation(err), "nil partner")

	err = svc.Set(ctx, id.New(), id.New(), types.MustMoney("-1"))
	assert.True(t, apperror.IsValidation(err), "negative price")
}
