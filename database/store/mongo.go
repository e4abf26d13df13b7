package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"laundrybook/utils"
)

// MongoStore implements DocumentStore on a MongoDB database. Live
// subscriptions are backed by change streams, so the deployment must be a
// replica set.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps the given database as a DocumentStore.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Get(ctx context.Context, collection, key string) (Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return fieldsFromDoc(doc), nil
}

func (s *MongoStore) Set(ctx context.Context, collection, key string, fields Fields) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := bson.M{"_id": key}
	for k, v := range fields {
		doc[k] = v
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, key string, fields Fields) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) UpdateIf(ctx context.Context, collection, key string, guard, fields Fields) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": key}
	for k, v := range guard {
		filter[k] = v
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("conditional update %s/%s: %w", collection, key, err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing document from a failed guard.
		n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": key})
		if err != nil {
			return fmt.Errorf("conditional update %s/%s: %w", collection, key, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrPreconditionFailed
	}
	return nil
}

func (s *MongoStore) Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	coll := s.db.Collection(collection)

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := coll.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	go func() {
		defer stream.Close(context.Background())

		snap, err := s.readAll(streamCtx, collection)
		if err != nil {
			onError(err)
			return
		}
		onSnapshot(snap)

		for stream.Next(streamCtx) {
			snap, err := s.readAll(streamCtx, collection)
			if err != nil {
				onError(err)
				return
			}
			onSnapshot(snap)
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			utils.GetLogger().Error("change stream failed", zap.String("collection", collection), zap.Error(err))
			onError(err)
		}
	}()

	return cancel, nil
}

// readAll materializes the full collection into a snapshot.
func (s *MongoStore) readAll(ctx context.Context, collection string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	snap := make(Snapshot)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("read %s: %w", collection, err)
		}
		key, _ := doc["_id"].(string)
		if key == "" {
			continue
		}
		snap[key] = fieldsFromDoc(doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return snap, nil
}

func fieldsFromDoc(doc bson.M) Fields {
	fields := make(Fields, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		fields[k] = v
	}
	return fields
}
