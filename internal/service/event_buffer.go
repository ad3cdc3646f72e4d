package service

import (
	"context"
	"log/slog"

	"suma/internal/config"
	"suma/internal/model"
	"suma/internal/repository"
)

// EventBuffer is the persisted, bounded FIFO of tracked events.
// Every operation is best-effort: storage failures are logged and the
// operation becomes a no-op. Append is a read-modify-write and is not
// atomic with respect to concurrent flushes.
type EventBuffer struct {
	store  repository.EventStore
	max    int
	logger *slog.Logger
}

// NewEventBuffer creates a buffer capped at max events (DefaultMaxBufferLength when <= 0)
func NewEventBuffer(store repository.EventStore, max int, logger *slog.Logger) *EventBuffer {
	if max <= 0 {
		max = config.DefaultMaxBufferLength
	}
	return &EventBuffer{
		store:  store,
		max:    max,
		logger: logger.With("component", "event_buffer"),
	}
}

// Append adds event at the tail and drops the oldest events beyond the cap
func (b *EventBuffer) Append(ctx context.Context, event model.MetricEvent) {
	events := append(b.ReadAll(ctx), event)
	if len(events) > b.max {
		events = events[len(events)-b.max:]
	}
	if err := b.store.Save(ctx, events); err != nil {
		b.logger.Warn("failed to persist event buffer", "error", err)
	}
}

// ReadAll returns the buffered events; absent or corrupt storage reads as empty
func (b *EventBuffer) ReadAll(ctx context.Context) []model.MetricEvent {
	events, err := b.store.Load(ctx)
	if err != nil {
		b.logger.Warn("failed to read event buffer", "error", err)
		return []model.MetricEvent{}
	}
	if events == nil {
		return []model.MetricEvent{}
	}
	return events
}

// Clear empties the buffer
func (b *EventBuffer) Clear(ctx context.Context) {
	if err := b.store.Save(ctx, []model.MetricEvent{}); err != nil {
		b.logger.Warn("failed to clear event buffer", "error", err)
	}
}

// Cap returns the maximum number of retained events
func (b *EventBuffer) Cap() int {
	return b.max
}
