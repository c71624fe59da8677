// Package docstore is the document database behind products, orders and
// contact messages. Records get a string id and server-side created_at and
// updated_at timestamps.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Products        = "products"
	Orders          = "orders"
	ContactMessages = "contact_messages"
)

var ErrNotFound = errors.New("record not found")

// Sort orders ListRecords results. The zero value keeps insertion order.
type Sort struct {
	Field      string
	Descending bool
}

// NewestFirst sorts by creation time, most recent first.
var NewestFirst = Sort{Field: "created_at", Descending: true}

// Records is the set of operations the storefront needs from a document
// store. out arguments are decoded with bson struct tags.
type Records interface {
	CreateRecord(ctx context.Context, collection string, data any) (string, error)
	ListRecords(ctx context.Context, collection string, sort Sort, out any) error
	GetRecord(ctx context.Context, collection, id string, out any) error
	UpdateRecord(ctx context.Context, collection, id string, patch any) error
	DeleteRecord(ctx context.Context, collection, id string) error
}

func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type MongoStore struct {
	db  *mongo.Database
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, now: time.Now}
}

func (s *MongoStore) CreateRecord(ctx context.Context, collection string, data any) (string, error) {
	doc, err := toDocument(data)
	if err != nil {
		return "", err
	}
	id := newID()
	stamp(doc, id, s.now())

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create %s record: %w", collection, err)
	}
	return id, nil
}

func (s *MongoStore) ListRecords(ctx context.Context, collection string, sort Sort, out any) error {
	opts := options.Find()
	if sort.Field != "" {
		direction := 1
		if sort.Descending {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: sort.Field, Value: direction}, {Key: "_id", Value: direction}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) GetRecord(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s record: %w", collection, err)
	}
	return nil
}

// UpdateRecord sets the fields in patch and bumps updated_at.
func (s *MongoStore) UpdateRecord(ctx context.Context, collection, id string, patch any) error {
	set, err := toDocument(patch)
	if err != nil {
		return err
	}
	delete(set, "_id")
	delete(set, "created_at")
	set["updated_at"] = s.now().UTC()

	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s record: %w", collection, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteRecord(ctx context.Context, collection, id string) error {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", collection, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateIndexes(ctx context.Context) error {
	for _, collection := range []string{Products, Orders, ContactMessages} {
		_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	_, err := s.db.Collection(Orders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create orders indexes: %w", err)
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func stamp(doc bson.M, id string, now time.Time) {
	now = now.UTC()
	doc["_id"] = id
	doc["created_at"] = now
	doc["updated_at"] = now
}

// toDocument flattens a struct or map into a bson.M using bson tags.
func toDocument(data any) (bson.M, error) {
	if m, ok := data.(bson.M); ok {
		out := make(bson.M, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return doc, nil
}
