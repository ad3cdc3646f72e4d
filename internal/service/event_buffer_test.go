package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sumalog "suma/internal/log"
	"suma/internal/model"
	"suma/internal/repository"
)

// failingStore fails every operation
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("storage unavailable")
}

func newBuffer(store repository.Store) *EventBuffer {
	return NewEventBuffer(repository.NewEventStore(store), 0, sumalog.Discard())
}

func numberedEvent(i int) model.MetricEvent {
	return model.MetricEvent{
		Type:      model.EventInteraction,
		Timestamp: "2024-01-01T00:00:00.000Z",
		SessionID: "visitor",
		Metadata:  map[string]interface{}{"n": fmt.Sprint(i)},
	}
}

func TestEventBufferKeepsNewestEvents(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(repository.NewMemoryStore())
	assert.Equal(t, 200, buf.Cap())

	for i := 1; i <= 205; i++ {
		buf.Append(ctx, numberedEvent(i))
	}

	events := buf.ReadAll(ctx)
	require.Len(t, events, 200)
	assert.Equal(t, "6", events[0].Metadata["n"])
	assert.Equal(t, "205", events[199].Metadata["n"])
}

func TestEventBufferAppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(repository.NewMemoryStore())

	buf.Append(ctx, numberedEvent(1))
	buf.Append(ctx, numberedEvent(2))

	events := buf.ReadAll(ctx)
	require.Len(t, events, 2)
	assert.Equal(t, "1", events[0].Metadata["n"])
	assert.Equal(t, "2", events[1].Metadata["n"])
}

func TestEventBufferCorruptStorageReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(ctx, repository.MetricsBufferKey, "{not json"))

	buf := newBuffer(store)
	assert.Empty(t, buf.ReadAll(ctx))

	buf.Append(ctx, numberedEvent(1))
	assert.Len(t, buf.ReadAll(ctx), 1)
}

func TestEventBufferStorageFailureDegrades(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(failingStore{})

	assert.NotPanics(t, func() {
		buf.Append(ctx, numberedEvent(1))
		buf.Clear(ctx)
	})
	assert.NotNil(t, buf.ReadAll(ctx))
	assert.Empty(t, buf.ReadAll(ctx))
}

func TestEventBufferClear(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	buf := newBuffer(store)

	buf.Append(ctx, numberedEvent(1))
	buf.Clear(ctx)

	assert.Empty(t, buf.ReadAll(ctx))
	raw, err := store.Get(ctx, repository.MetricsBufferKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}
