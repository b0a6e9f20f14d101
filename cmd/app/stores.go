package main

import (
	"context"
	"fmt"

	"github.com/jusastore/store-backend/internal/cart"
	"github.com/jusastore/store-backend/internal/config"
	"github.com/jusastore/store-backend/internal/infrastructure/database/mongodb"
	"github.com/jusastore/store-backend/internal/infrastructure/database/postgres"
	"github.com/jusastore/store-backend/internal/order"
	"github.com/jusastore/store-backend/internal/product"
	"github.com/jusastore/store-backend/internal/user"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// stores bundles one backend's repositories.
type stores struct {
	products product.Repository
	users    user.Repository
	carts    cart.Repository
	orders   order.Repository

	ping  func(context.Context) error
	close func(context.Context) error
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DatabaseURL)
	case config.DriverMongo:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.DriverMemory:
		return memoryStores(), nil
	}
	return stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openPostgres(ctx context.Context, url string) (stores, error) {
	db, err := postgres.Open(ctx, url)
	if err != nil {
		return stores{}, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return stores{
		products: product.NewPostgresRepository(db),
		users:    user.NewPostgresRepository(db),
		carts:    cart.NewPostgresRepository(db),
		orders:   order.NewPostgresRepository(db),
		ping:     db.PingContext,
		close:    func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, uri, name string) (stores, error) {
	client, err := mongodb.Connect(ctx, uri)
	if err != nil {
		return stores{}, err
	}
	db := client.Database(name)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return stores{}, err
	}
	return stores{
		products: product.NewMongoRepository(db),
		users:    user.NewMongoRepository(db),
		carts:    cart.NewMongoRepository(db),
		orders:   order.NewMongoRepository(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}

func memoryStores() stores {
	carts := cart.NewInMemoryRepository()
	return stores{
		products: product.NewInMemoryRepository(nil),
		users:    user.NewInMemoryRepository(nil),
		carts:    carts,
		orders:   order.NewInMemoryRepository(carts),
		ping:     func(context.Context) error { return nil },
		close:    func(context.Context) error { return nil },
	}
}
