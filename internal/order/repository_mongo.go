package order

import (
	"context"
	"errors"
	"time"

	"github.com/jusastore/store-backend/internal/cart"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "orders"

// MongoRepository needs a replica set or sharded cluster: Place runs in a
// multi-document transaction.
type MongoRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	carts  *mongo.Collection
}

type orderDoc struct {
	ID           string               `bson:"_id"`
	UserID       string               `bson:"userId"`
	Items        []lineItemDoc        `bson:"items"`
	TotalAmount  primitive.Decimal128 `bson:"totalAmount"`
	DeliveryInfo DeliveryInfo         `bson:"deliveryInfo"`
	PaymentInfo  PaymentInfo          `bson:"paymentInfo"`
	Status       Status               `bson:"status"`
	OrderDate    time.Time            `bson:"orderDate"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

type lineItemDoc struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
	Color     string               `bson:"color"`
	Size      string               `bson:"size"`
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		client: db.Client(),
		orders: db.Collection(CollectionName),
		carts:  db.Collection(cart.CollectionName),
	}
}

func (r *MongoRepository) Place(ctx context.Context, o Order) error {
	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.orders.InsertOne(sc, doc); err != nil {
			return nil, err
		}
		_, err := r.carts.UpdateOne(sc, bson.M{"_id": o.UserID}, cart.ClearUpdate(o.CreatedAt))
		return nil, err
	})
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Order, error) {
	var doc orderDoc
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return doc.toOrder()
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.orders.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := make([]Order, 0)
	for cur.Next(ctx) {
		var doc orderDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		o, err := doc.toOrder()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, cur.Err()
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Order, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDoc
	err := r.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := r.GetByID(ctx, id); err != nil {
			return Order{}, err
		}
		return Order{}, ErrStatusChanged
	}
	if err != nil {
		return Order{}, err
	}
	return doc.toOrder()
}

func newOrderDoc(o Order) (orderDoc, error) {
	total, err := primitive.ParseDecimal128(o.TotalAmount.String())
	if err != nil {
		return orderDoc{}, err
	}
	items := make([]lineItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		price, err := primitive.ParseDecimal128(it.Price.String())
		if err != nil {
			return orderDoc{}, err
		}
		items = append(items, lineItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
			Color:     it.Color,
			Size:      it.Size,
		})
	}
	return orderDoc{
		ID:           o.ID,
		UserID:       o.UserID,
		Items:        items,
		TotalAmount:  total,
		DeliveryInfo: o.DeliveryInfo,
		PaymentInfo:  o.PaymentInfo,
		Status:       o.Status,
		OrderDate:    o.OrderDate,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}, nil
}

func (d orderDoc) toOrder() (Order, error) {
	total, err := decimal.NewFromString(d.TotalAmount.String())
	if err != nil {
		return Order{}, err
	}
	items := make([]LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.Price.String())
		if err != nil {
			return Order{}, err
		}
		items = append(items, LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
			Color:     it.Color,
			Size:      it.Size,
		})
	}
	return Order{
		ID:           d.ID,
		UserID:       d.UserID,
		Items:        items,
		TotalAmount:  total,
		DeliveryInfo: d.DeliveryInfo,
		PaymentInfo:  d.PaymentInfo,
		Status:       d.Status,
		OrderDate:    d.OrderDate.UTC(),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}
