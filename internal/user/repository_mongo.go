package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "users"

type MongoRepository struct {
	coll *mongo.Collection
}

type addressDoc struct {
	AddressLine1 string `bson:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty"`
	City         string `bson:"city"`
	Postcode     string `bson:"postcode"`
	Country      string `bson:"country"`
}

type paymentDoc struct {
	CardNumber  string `bson:"cardNumber,omitempty"`
	ExpireMonth *int   `bson:"expireMonth,omitempty"`
	ExpireYear  *int   `bson:"expireYear,omitempty"`
	NameOnCard  string `bson:"nameOnCard,omitempty"`
}

type userDoc struct {
	ID             string     `bson:"_id"`
	FirstName      string     `bson:"firstName"`
	LastName       string     `bson:"lastName"`
	Email          string     `bson:"email"`
	Password       string     `bson:"password"`
	PhoneNumber    string     `bson:"phoneNumber,omitempty"`
	Address        addressDoc `bson:"address"`
	PaymentDetails paymentDoc `bson:"paymentDetails"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
}

// NewMongoRepository expects a unique index on email, see mongodb.EnsureIndexes.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) Create(ctx context.Context, u User) (User, error) {
	_, err := r.coll.InsertOne(ctx, newUserDoc(u))
	if mongo.IsDuplicateKeyError(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *MongoRepository) Update(ctx context.Context, u User) (User, error) {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, newUserDoc(u))
	if mongo.IsDuplicateKeyError(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, err
	}
	if res.MatchedCount == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return doc.toUser(), nil
}

func newUserDoc(u User) userDoc {
	return userDoc{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Password:    u.Password,
		PhoneNumber: u.PhoneNumber,
		Address: addressDoc{
			AddressLine1: u.Address.AddressLine1,
			AddressLine2: u.Address.AddressLine2,
			City:         u.Address.City,
			Postcode:     u.Address.Postcode,
			Country:      u.Address.Country,
		},
		PaymentDetails: paymentDoc{
			CardNumber:  u.PaymentDetails.CardNumber,
			ExpireMonth: u.PaymentDetails.ExpireMonth,
			ExpireYear:  u.PaymentDetails.ExpireYear,
			NameOnCard:  u.PaymentDetails.NameOnCard,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDoc) toUser() User {
	return User{
		ID:          d.ID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Password:    d.Password,
		PhoneNumber: d.PhoneNumber,
		Address: Address{
			AddressLine1: d.Address.AddressLine1,
			AddressLine2: d.Address.AddressLine2,
			City:         d.Address.City,
			Postcode:     d.Address.Postcode,
			Country:      d.Address.Country,
		},
		PaymentDetails: PaymentDetails{
			CardNumber:  d.PaymentDetails.CardNumber,
			ExpireMonth: d.PaymentDetails.ExpireMonth,
			ExpireYear:  d.PaymentDetails.ExpireYear,
			NameOnCard:  d.PaymentDetails.NameOnCard,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
