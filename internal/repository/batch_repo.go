package repository

import (
	"context"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"suma/internal/model"
)

// BatchRepo archives metric batches received by the collector
type BatchRepo interface {
	Save(ctx context.Context, batch *model.MetricBatch) error
	ListRecent(ctx context.Context, limit int) ([]*model.MetricBatch, error)
}

type batchRepo struct {
	collection *mongo.Collection
}

// NewBatchRepo creates a MongoDB-backed batch archive with indexes
func NewBatchRepo(db *mongo.Database) BatchRepo {
	repo := &batchRepo{collection: db.Collection("metric_batches")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *batchRepo) ensureIndexes(ctx context.Context) {
	r.createIndex(ctx, bson.D{{Key: "receivedAt", Value: -1}})
	r.createIndex(ctx, bson.D{
		{Key: "events.type", Value: 1},
		{Key: "receivedAt", Value: -1},
	})
}

func (r *batchRepo) createIndex(ctx context.Context, keys bson.D) {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys})
	if err != nil {
		slog.Warn("failed to create index", "collection", r.collection.Name(), "error", err)
	}
}

func (r *batchRepo) Save(ctx context.Context, batch *model.MetricBatch) error {
	_, err := r.collection.InsertOne(ctx, batch)
	return err
}

func (r *batchRepo) ListRecent(ctx context.Context, limit int) ([]*model.MetricBatch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var batches []*model.MetricBatch
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

type memoryBatchRepo struct {
	mu      sync.RWMutex
	batches []*model.MetricBatch
}

// NewMemoryBatchRepo keeps batches in process memory
func NewMemoryBatchRepo() BatchRepo {
	return &memoryBatchRepo{}
}

func (r *memoryBatchRepo) Save(_ context.Context, batch *model.MetricBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	return nil
}

func (r *memoryBatchRepo) ListRecent(_ context.Context, limit int) ([]*model.MetricBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.MetricBatch, 0, limit)
	for i := len(r.batches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.batches[i])
	}
	return out, nil
}
