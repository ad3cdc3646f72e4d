package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sumalog "suma/internal/log"
	"suma/internal/model"
	"suma/internal/repository"
)

func newTracker(store repository.Store) *Tracker {
	logger := sumalog.Discard()
	buf := NewEventBuffer(repository.NewEventStore(store), 0, logger)
	flusher := NewFlusher("", buf, nil, nil, logger)
	tr := NewTracker(buf, flusher, NewVisitorIDs(store, logger), logger)
	tr.now = fixedClock
	return tr
}

func TestTrackEnrichesEvent(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(repository.NewMemoryStore())

	page := model.PageContext{Path: "/pricing", Referrer: "https://search.example", UserAgent: "test-agent"}
	event, err := tr.Track(ctx, model.EventCTAClick, map[string]interface{}{"label": "start", "path": "/spoofed"}, page)
	require.NoError(t, err)

	assert.Equal(t, model.EventCTAClick, event.Type)
	assert.Equal(t, "2024-05-01T08:30:00.000Z", event.Timestamp)
	assert.NotEmpty(t, event.SessionID)
	assert.Equal(t, "start", event.Metadata["label"])
	assert.Equal(t, "/pricing", event.Metadata["path"])
	assert.Equal(t, "https://search.example", event.Metadata["referrer"])
	assert.Equal(t, "test-agent", event.Metadata["userAgent"])

	buffered := tr.Buffered(ctx)
	require.Len(t, buffered, 1)
	assert.Equal(t, event.SessionID, buffered[0].SessionID)
}

func TestTrackEmptyReferrerIsNull(t *testing.T) {
	tr := newTracker(repository.NewMemoryStore())

	event, err := tr.Track(context.Background(), model.EventSignUp, nil, model.PageContext{Path: "/"})
	require.NoError(t, err)

	v, present := event.Metadata["referrer"]
	assert.True(t, present)
	assert.Nil(t, v)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"referrer":null`)
}

func TestTrackRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(repository.NewMemoryStore())

	_, err := tr.Track(ctx, model.MetricEventType("scroll"), nil, model.PageContext{})
	assert.ErrorIs(t, err, ErrUnknownEventType)
	assert.Empty(t, tr.Buffered(ctx))
}

func TestTrackUsesVisitorOverride(t *testing.T) {
	tr := newTracker(repository.NewMemoryStore())

	event, err := tr.Track(context.Background(), model.EventInteraction, nil, model.PageContext{VisitorID: "browser-1"})
	require.NoError(t, err)
	assert.Equal(t, "browser-1", event.SessionID)
}

func TestVisitRecordsURL(t *testing.T) {
	tr := newTracker(repository.NewMemoryStore())

	event, err := tr.Visit(context.Background(), model.PageContext{Path: "/", URL: "https://suma.example/"})
	require.NoError(t, err)
	assert.Equal(t, model.EventVisit, event.Type)
	assert.Equal(t, "https://suma.example/", event.Metadata["url"])
}

func TestVisibilityChangedOnlyFlushesWhenHidden(t *testing.T) {
	tr := newTracker(repository.NewMemoryStore())
	assert.True(t, tr.VisibilityChanged(context.Background(), "hidden"))
	assert.False(t, tr.VisibilityChanged(context.Background(), "visible"))
}

func TestVisitorIDIsStable(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	first := NewVisitorIDs(store, sumalog.Discard()).Get(ctx)
	_, err := uuid.Parse(first)
	require.NoError(t, err)

	second := NewVisitorIDs(store, sumalog.Discard()).Get(ctx)
	assert.Equal(t, first, second)

	raw, err := store.Get(ctx, repository.VisitorIDKey)
	require.NoError(t, err)
	assert.Equal(t, `"`+first+`"`, raw)
}

func TestVisitorIDFallback(t *testing.T) {
	ids := NewVisitorIDs(repository.NewMemoryStore(), sumalog.Discard())
	ids.newID = func() (uuid.UUID, error) { return uuid.Nil, errors.New("no entropy") }
	ids.now = func() time.Time { return time.UnixMilli(1700000000123) }

	assert.Equal(t, "anon-1700000000123", ids.Get(context.Background()))
}

func TestVisitorIDSurvivesStorageFailure(t *testing.T) {
	ids := NewVisitorIDs(failingStore{}, sumalog.Discard())

	id := ids.Get(context.Background())
	assert.NotEmpty(t, id)
	assert.False(t, strings.HasPrefix(id, "anon-"))
	assert.Equal(t, id, ids.Get(context.Background()))
}
