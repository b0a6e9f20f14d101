package product

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "products"

type MongoRepository struct {
	coll *mongo.Collection
}

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Brand       string               `bson:"brand"`
	Type        string               `bson:"type"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	IsSale      bool                 `bson:"isSale"`
	IsNew       bool                 `bson:"isNew"`
	Colors      []string             `bson:"colors"`
	Sizes       []string             `bson:"sizes"`
	Image       string               `bson:"image"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Sale {
		filter["isSale"] = true
	}
	if f.New {
		filter["isNew"] = true
	}
	return r.find(ctx, filter)
}

func (r *MongoRepository) Search(ctx context.Context, q string) ([]Product, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"brand": re},
		bson.M{"type": re},
		bson.M{"description": re},
	}}
	return r.find(ctx, filter)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return doc.toProduct()
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *MongoRepository) Create(ctx context.Context, p Product) (Product, error) {
	doc, err := newProductDoc(p)
	if err != nil {
		return Product{}, err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, p Product) (Product, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return Product{}, err
	}
	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"brand":       p.Brand,
		"type":        p.Type,
		"description": p.Description,
		"price":       price,
		"category":    p.Category,
		"isSale":      p.IsSale,
		"isNew":       p.IsNew,
		"colors":      p.Colors,
		"sizes":       p.Sizes,
		"image":       p.Image,
		"updatedAt":   p.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return doc.toProduct()
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset is not atomic on standalone servers; a failed insert leaves a
// partially imported catalog.
func (r *MongoRepository) Reset(ctx context.Context, products []Product) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		doc, err := newProductDoc(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	products := make([]Product, 0)
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := doc.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, cur.Err()
}

func newProductDoc(p Product) (productDoc, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Type:        p.Type,
		Description: p.Description,
		Price:       price,
		Category:    p.Category,
		IsSale:      p.IsSale,
		IsNew:       p.IsNew,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d productDoc) toProduct() (Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return Product{}, err
	}
	p := Product{
		ID:          d.ID,
		Name:        d.Name,
		Brand:       d.Brand,
		Type:        d.Type,
		Description: d.Description,
		Price:       price,
		Category:    d.Category,
		IsSale:      d.IsSale,
		IsNew:       d.IsNew,
		Colors:      d.Colors,
		Sizes:       d.Sizes,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	return p, nil
}
