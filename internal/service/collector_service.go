package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"suma/internal/cache"
	"suma/internal/model"
	"suma/internal/repository"
)

// CollectorService receives flushed batches and archives them
type CollectorService struct {
	repo    repository.BatchRepo
	counter cache.EventCounter
	logger  *slog.Logger
	now     func() time.Time
}

// NewCollectorService creates a collector service
func NewCollectorService(repo repository.BatchRepo, counter cache.EventCounter, logger *slog.Logger) *CollectorService {
	return &CollectorService{
		repo:    repo,
		counter: counter,
		logger:  logger.With("component", "collector"),
		now:     time.Now,
	}
}

// Accept validates a flush payload and stores it as a batch
func (s *CollectorService) Accept(ctx context.Context, payload *model.FlushPayload, remoteAddr string) (*model.MetricBatch, error) {
	if payload == nil || len(payload.Events) == 0 {
		return nil, ErrEmptyBatch
	}
	for i, event := range payload.Events {
		if !event.Type.Valid() {
			return nil, fmt.Errorf("%w: event %d has type %q", ErrUnknownEventType, i, event.Type)
		}
	}

	batch := &model.MetricBatch{
		ID:         uuid.New().String(),
		Events:     payload.Events,
		FlushedAt:  payload.FlushedAt,
		ReceivedAt: s.now().UTC(),
		RemoteAddr: remoteAddr,
	}
	if err := s.repo.Save(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to archive batch: %w", err)
	}

	counts := make(map[string]int)
	for _, event := range batch.Events {
		counts[string(event.Type)]++
	}
	if err := s.counter.Increment(ctx, counts); err != nil {
		s.logger.Warn("failed to update event counters", "batch_id", batch.ID, "error", err)
	}

	s.logger.Info("batch archived", "batch_id", batch.ID, "events", len(batch.Events))
	return batch, nil
}

// Summary ranks the collected event types by volume
func (s *CollectorService) Summary(ctx context.Context) ([]cache.EventCount, error) {
	return s.counter.Top(ctx, len(model.MetricEventTypes))
}

// Recent lists the newest archived batches
func (s *CollectorService) Recent(ctx context.Context, limit int) ([]*model.MetricBatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}
