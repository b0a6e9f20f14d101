package cart

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shopperID = "9a1e0c1f-5b7d-4e2a-8c3b-2d4e6f8a0b01"
	p1ID      = "3c9a7e21-0d4b-4f6e-9a1c-5b7d9e1f3a01"
	p2ID      = "3c9a7e21-0d4b-4f6e-9a1c-5b7d9e1f3a02"
)

func newCatalog() *product.InMemoryRepository {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return product.NewInMemoryRepository([]product.Product{
		{ID: p1ID, Name: "Wrap Top", Category: "women", Price: decimal.RequireFromString("20.00"), CreatedAt: base},
		{ID: p2ID, Name: "Canvas Tote", Category: "women", Price: decimal.RequireFromString("9.99"), CreatedAt: base},
	})
}

func newTestService(catalog *product.InMemoryRepository) (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo, product.NewService(catalog)), repo
}

func qty(n int) *int { return &n }

func TestService_AddMergesSameVariant(t *testing.T) {
	svc, _ := newTestService(newCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, shopperID, AddItem{ProductID: p1ID})
	require.NoError(t, err)
	view, err := svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Quantity: qty(2), Color: DefaultVariant})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, DefaultVariant, view.Items[0].Size)
	assert.True(t, decimal.RequireFromString("60").Equal(view.Total))

	view, err = svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Color: "red"})
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestService_TotalFollowsCurrentPrices(t *testing.T) {
	catalog := newCatalog()
	svc, _ := newTestService(catalog)
	ctx := context.Background()

	_, err := svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Quantity: qty(2)})
	require.NoError(t, err)
	view, err := svc.Add(ctx, shopperID, AddItem{ProductID: p2ID})
	require.NoError(t, err)
	assert.Equal(t, "49.99", view.Total.StringFixed(2))

	p, err := catalog.GetByID(ctx, p2ID)
	require.NoError(t, err)
	p.Price = decimal.RequireFromString("5.00")
	_, err = catalog.Update(ctx, p2ID, p)
	require.NoError(t, err)

	view, err = svc.Get(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, "45.00", view.Total.StringFixed(2))

	require.NoError(t, catalog.Delete(ctx, p2ID))
	view, err = svc.Get(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", view.Total.StringFixed(2))
	assert.Nil(t, view.Items[1].Product)
}

func TestService_RejectsBadQuantityWithoutChangingCart(t *testing.T) {
	svc, repo := newTestService(newCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Quantity: qty(2)})
	require.NoError(t, err)

	for _, n := range []int{0, -3} {
		_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Quantity: qty(n)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, err = svc.SetQuantity(ctx, shopperID, p1ID, "", "", n)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	stored, err := repo.Get(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "40.00", stored.Total.StringFixed(2))
}

func TestService_QuantityCap(t *testing.T) {
	svc, repo := newTestService(newCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Quantity: qty(math.MaxInt)})
	assert.ErrorIs(t, err, ErrQuantityLimit)
	_, err = repo.Get(ctx, shopperID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Quantity: qty(MaxQuantity)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p1ID})
	assert.ErrorIs(t, err, ErrQuantityLimit)
	_, err = svc.SetQuantity(ctx, shopperID, p1ID, "", "", MaxQuantity+1)
	assert.ErrorIs(t, err, ErrQuantityLimit)

	stored, err := repo.Get(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, stored.Items[0].Quantity)
	assert.Equal(t, "19980.00", stored.Total.StringFixed(2))
}

func TestService_AddUnknownProduct(t *testing.T) {
	svc, repo := newTestService(newCatalog())

	_, err := svc.Add(context.Background(), shopperID, AddItem{ProductID: "3c9a7e21-0d4b-4f6e-9a1c-5b7d9e1f3aff"})
	assert.ErrorIs(t, err, product.ErrNotFound)
	_, err = svc.Add(context.Background(), shopperID, AddItem{ProductID: "not-a-uuid"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = repo.Get(context.Background(), shopperID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SetQuantityMissing(t *testing.T) {
	svc, _ := newTestService(newCatalog())
	ctx := context.Background()

	_, err := svc.SetQuantity(ctx, shopperID, p1ID, "", "", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p1ID, Color: "red"})
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, shopperID, p1ID, "blue", "", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)

	view, err := svc.SetQuantity(ctx, shopperID, p1ID, "red", "", 4)
	require.NoError(t, err)
	assert.Equal(t, "80.00", view.Total.StringFixed(2))
}

func TestService_RemoveIsIdempotent(t *testing.T) {
	svc, _ := newTestService(newCatalog())
	ctx := context.Background()

	view, err := svc.Remove(ctx, shopperID, p1ID, "", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p1ID})
	require.NoError(t, err)
	_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p2ID})
	require.NoError(t, err)

	view, err = svc.Remove(ctx, shopperID, p1ID, "", "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "9.99", view.Total.StringFixed(2))

	view, err = svc.Remove(ctx, shopperID, p1ID, "", "")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestService_ClearAndEmptyView(t *testing.T) {
	svc, _ := newTestService(newCatalog())
	ctx := context.Background()

	view, err := svc.Get(ctx, shopperID)
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.True(t, view.Total.IsZero())

	_, err = svc.Add(ctx, shopperID, AddItem{ProductID: p2ID, Quantity: qty(3)})
	require.NoError(t, err)
	view, err = svc.Clear(ctx, shopperID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}
