package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tbourn/go-party-backend/internal/domain"
)

// MongoBackend stores each collection in a MongoDB collection of the same name.
type MongoBackend struct {
	db *mongo.Database
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// NewMongoBackend uses database name on client.
func NewMongoBackend(client *mongo.Client, name string) *MongoBackend {
	return &MongoBackend{db: client.Database(name)}
}

// EnsureIndexes creates the partyId indexes used by child-collection queries.
func (b *MongoBackend) EnsureIndexes(ctx context.Context) error {
	for _, coll := range []string{domain.CollectionRSVPs, domain.CollectionMessages} {
		_, err := b.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "partyId", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("index %s.partyId: %w", coll, err)
		}
	}
	return nil
}

func (b *MongoBackend) Insert(ctx context.Context, rec domain.Record) error {
	if domain.NewRecord(rec.Collection()) == nil {
		return fmt.Errorf("%w: unsupported record %T", ErrInvalidLocation, rec)
	}
	_, err := b.db.Collection(rec.Collection()).InsertOne(ctx, rec)
	return err
}

func (b *MongoBackend) Get(ctx context.Context, loc Location) (domain.Record, error) {
	rec := domain.NewRecord(loc.Collection)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, loc)
	}
	err := b.db.Collection(loc.Collection).FindOne(ctx, bson.M{"_id": loc.ID}).Decode(rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *MongoBackend) List(ctx context.Context, q Query) ([]domain.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	cur, err := b.db.Collection(q.Collection).Find(ctx, mongoFilter(q))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Record
	for cur.Next(ctx) {
		rec := domain.NewRecord(q.Collection)
		if err := cur.Decode(rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

func (b *MongoBackend) Stats(ctx context.Context, q Query) (int64, *time.Time, error) {
	if err := q.Validate(); err != nil {
		return 0, nil, err
	}
	if q.Collection == domain.CollectionParties || strings.EqualFold(q.Field, "id") {
		return 0, nil, fmt.Errorf("%w: stats need a party filter", ErrInvalidQuery)
	}
	coll := b.db.Collection(q.Collection)
	filter := mongoFilter(q)

	count, err := coll.CountDocuments(ctx, filter)
	if err != nil || count == 0 {
		return 0, nil, err
	}

	var row struct {
		CreatedAt time.Time `bson:"createdAt"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"createdAt": 1})
	if err := coll.FindOne(ctx, filter, opts).Decode(&row); err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

func mongoFilter(q Query) bson.M {
	switch strings.ToLower(q.Field) {
	case "id":
		return bson.M{"_id": q.Value}
	case "partyid", "party_id":
		return bson.M{"partyId": q.Value}
	}
	return bson.M{}
}
