package repository

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"suma/internal/model"
)

// Storage keys shared with the landing site's local storage layout
const (
	MetricsBufferKey = "suma-metrics-buffer"
	VisitorIDKey     = "suma-visitor-id"
)

// ErrCorrupt marks a stored value that is not valid JSON for its key
var ErrCorrupt = errors.New("stored value is corrupt")

// EventStore loads and saves the whole persisted event buffer
type EventStore interface {
	Load(ctx context.Context) ([]model.MetricEvent, error)
	Save(ctx context.Context, events []model.MetricEvent) error
}

type eventStore struct {
	store Store
	key   string
}

// NewEventStore keeps the buffer as a JSON array under MetricsBufferKey
func NewEventStore(store Store) EventStore {
	return &eventStore{store: store, key: MetricsBufferKey}
}

// Load returns nil with no error when nothing was stored yet
func (s *eventStore) Load(ctx context.Context) ([]model.MetricEvent, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var events []model.MetricEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", s.key, err)
	}
	return events, nil
}

func (s *eventStore) Save(ctx context.Context, events []model.MetricEvent) error {
	if events == nil {
		events = []model.MetricEvent{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return errors.Wrap(err, "events.marshal")
	}
	return s.store.Set(ctx, s.key, string(data))
}
