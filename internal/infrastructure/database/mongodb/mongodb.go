// Package mongodb connects to MongoDB and declares the indexes the stores
// rely on.
package mongodb

import (
	"context"
	"fmt"

	"github.com/jusastore/store-backend/internal/order"
	"github.com/jusastore/store-backend/internal/product"
	"github.com/jusastore/store-backend/internal/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique email index and the lookup indexes.
// Re-running with identical keys and options is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{user.CollectionName, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{order.CollectionName, mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{product.CollectionName, mongo.IndexModel{
			Keys: bson.D{{Key: "category", Value: 1}},
		}},
	}
	for _, ix := range indexes {
		if _, err := db.Collection(ix.coll).Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.coll, err)
		}
	}
	return nil
}
