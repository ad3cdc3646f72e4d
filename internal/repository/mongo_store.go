package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type storageDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore stores client storage keys as documents in "client_storage"
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection("client_storage")}
}

func (s *mongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc storageDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "mongo.get(%s)", key)
	}
	return doc.Value, nil
}

func (s *mongoStore) Set(ctx context.Context, key, value string) error {
	opts := options.Replace().SetUpsert(true)
	doc := storageDoc{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return errors.Wrapf(err, "mongo.set(%s)", key)
}

func (s *mongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	return errors.Wrapf(err, "mongo.delete(%s)", key)
}
