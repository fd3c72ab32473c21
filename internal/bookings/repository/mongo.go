package repository

import (
	"context"
	"errors"
	"fmt"

	bookingerrors "cleanroom/internal/bookings/errors"
	"cleanroom/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionName = "Bookings"
)

type mongoStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// NewMongoStore keys documents by a docId field so ids stay portable between
// backends. _id is never exposed.
func NewMongoStore(cfg *config.Config) Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoStore) List(ctx context.Context) ([]map[string]any, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []map[string]any
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		docs = append(docs, plainMap(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return docs, nil
}

func (r *mongoStore) FindByDocID(ctx context.Context, docID string) (map[string]any, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var raw bson.M
	opts := options.FindOne().SetProjection(bson.M{"_id": 0})
	err := r.collection.FindOne(ctx, bson.M{docIDField: docID}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return plainMap(raw), nil
}

func (r *mongoStore) Write(ctx context.Context, docID string, partial map[string]any) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{docIDField: docID},
		bson.M{"$set": bson.M(withoutDocID(partial))},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingerrors.ErrNotFound
	}
	return nil
}

func (r *mongoStore) Create(ctx context.Context, doc map[string]any) (string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docID, _ := doc[docIDField].(string)
	if docID == "" {
		docID = primitive.NewObjectID().Hex()
	}
	insert := bson.M(withoutDocID(doc))
	insert[docIDField] = docID

	if _, err := r.collection.InsertOne(ctx, insert); err != nil {
		return "", fmt.Errorf("failed to create booking: %w", err)
	}
	return docID, nil
}

func (r *mongoStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return r.cfg.Client.Mongo.Ping(ctx, readpref.Primary())
}

// plainMap converts decoded BSON into the plain shapes the normalizer reads:
// map[string]any, []any and time.Time.
func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case primitive.DateTime:
		return t.Time()
	case primitive.Timestamp:
		return map[string]any{"seconds": int64(t.T), "nanoseconds": 0}
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
