package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates all indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))

		first := mt.GetStartedEvent().Command
		assert.Equal(mt, "users", first.Lookup("createIndexes").StringValue())
		unique, err := first.LookupErr("indexes", "0", "unique")
		require.NoError(mt, err)
		assert.True(mt, unique.Boolean())
	})

	mt.Run("reports the failing collection", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 86, Name: "IndexKeySpecsConflict", Message: "conflict"}),
		)
		err := EnsureIndexes(context.Background(), mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "orders")
	})
}
