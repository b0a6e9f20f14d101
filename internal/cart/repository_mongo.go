package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "carts"

var zeroTotal, _ = primitive.ParseDecimal128("0")

type MongoRepository struct {
	coll *mongo.Collection
}

type cartDoc struct {
	UserID    string               `bson:"_id"`
	Items     []lineItemDoc        `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type lineItemDoc struct {
	ProductID string `bson:"productId"`
	Quantity  int    `bson:"quantity"`
	Color     string `bson:"color"`
	Size      string `bson:"size"`
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Get(ctx context.Context, userID string) (Cart, error) {
	var doc cartDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}
	return doc.toCart()
}

func (r *MongoRepository) Save(ctx context.Context, c Cart) error {
	doc, err := newCartDoc(c)
	if err != nil {
		return err
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": c.UserID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, ClearUpdate(time.Now().UTC()))
	return err
}

// ClearUpdate is the update document that empties a cart. The order store
// applies it inside the checkout transaction.
func ClearUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"items":     bson.A{},
		"total":     zeroTotal,
		"updatedAt": at,
	}}
}

func newCartDoc(c Cart) (cartDoc, error) {
	total, err := primitive.ParseDecimal128(c.Total.String())
	if err != nil {
		return cartDoc{}, err
	}
	items := make([]lineItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, lineItemDoc(it))
	}
	return cartDoc{UserID: c.UserID, Items: items, Total: total, UpdatedAt: c.UpdatedAt}, nil
}

func (d cartDoc) toCart() (Cart, error) {
	total, err := decimal.NewFromString(d.Total.String())
	if err != nil {
		return Cart{}, err
	}
	items := make([]LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, LineItem(it))
	}
	return Cart{UserID: d.UserID, Items: items, Total: total, UpdatedAt: d.UpdatedAt.UTC()}, nil
}
