package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func orderDocFixture(t *testing.T, status Status) bson.D {
	t.Helper()
	price, err := primitive.ParseDecimal128("20.00")
	require.NoError(t, err)
	total, err := primitive.ParseDecimal128("40.00")
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: orderID},
		{Key: "userId", Value: buyerID},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "productId", Value: p1ID},
			{Key: "name", Value: "Pleated Skirt"},
			{Key: "price", Value: price},
			{Key: "quantity", Value: 2},
		}}},
		{Key: "totalAmount", Value: total},
		{Key: "deliveryInfo", Value: bson.D{
			{Key: "firstName", Value: "Jane"},
			{Key: "address", Value: bson.D{{Key: "city", Value: "Leeds"}}},
		}},
		{Key: "paymentInfo", Value: bson.D{{Key: "method", Value: "Card"}, {Key: "status", Value: "Pending"}}},
		{Key: "status", Value: string(status)},
		{Key: "orderDate", Value: at},
		{Key: "createdAt", Value: at},
		{Key: "updatedAt", Value: at},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list by user", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderDocFixture(t, StatusPending)))

		orders, err := repo.ListByUser(context.Background(), buyerID)
		require.NoError(mt, err)
		require.Len(mt, orders, 1)
		assert.Equal(mt, "40", orders[0].TotalAmount.String())
		assert.Equal(mt, "Leeds", orders[0].DeliveryInfo.Address.City)
		assert.Equal(mt, MethodCard, orders[0].PaymentInfo.Method)

		filter, err := mt.GetStartedEvent().Command.LookupErr("filter", "userId")
		require.NoError(mt, err)
		assert.Equal(mt, buyerID, filter.StringValue())
	})

	mt.Run("get missing order", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), orderID)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update status applies", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: orderDocFixture(t, StatusCancelled)},
		})

		o, err := repo.UpdateStatus(context.Background(), orderID, StatusPending, StatusCancelled, time.Now().UTC())
		require.NoError(mt, err)
		assert.Equal(mt, StatusCancelled, o.Status)
	})

	mt.Run("update status after change", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderDocFixture(t, StatusShipped)),
		)

		_, err := repo.UpdateStatus(context.Background(), orderID, StatusPending, StatusCancelled, time.Now().UTC())
		assert.ErrorIs(mt, err, ErrStatusChanged)
	})
}
