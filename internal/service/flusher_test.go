package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sumalog "suma/internal/log"
	"suma/internal/model"
	"suma/internal/repository"
)

type stubBeacon struct {
	mu     sync.Mutex
	accept bool
	sent   [][]byte
}

func (b *stubBeacon) Send(_ string, payload []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, payload)
	return b.accept
}

type collectorStub struct {
	mu       sync.Mutex
	status   int
	payloads []model.FlushPayload
}

func (c *collectorStub) handler(w http.ResponseWriter, r *http.Request) {
	var payload model.FlushPayload
	_ = json.NewDecoder(r.Body).Decode(&payload)

	c.mu.Lock()
	c.payloads = append(c.payloads, payload)
	status := c.status
	c.mu.Unlock()

	w.WriteHeader(status)
}

func (c *collectorStub) received() []model.FlushPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.FlushPayload(nil), c.payloads...)
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
}

func TestFlushPostsAndClearsOnSuccess(t *testing.T) {
	ctx := context.Background()
	collector := &collectorStub{status: http.StatusAccepted}
	srv := httptest.NewServer(http.HandlerFunc(collector.handler))
	defer srv.Close()

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(ctx, numberedEvent(1))
	buf.Append(ctx, numberedEvent(2))

	f := NewFlusher(srv.URL, buf, nil, srv.Client(), sumalog.Discard())
	f.now = fixedClock

	assert.True(t, f.Flush(ctx))
	assert.Empty(t, buf.ReadAll(ctx))

	got := collector.received()
	require.Len(t, got, 1)
	assert.Len(t, got[0].Events, 2)
	assert.Equal(t, "2024-05-01T08:30:00.000Z", got[0].FlushedAt)
}

func TestFlushKeepsBufferOnFailure(t *testing.T) {
	ctx := context.Background()
	collector := &collectorStub{status: http.StatusInternalServerError}
	srv := httptest.NewServer(http.HandlerFunc(collector.handler))
	defer srv.Close()

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(ctx, numberedEvent(1))

	f := NewFlusher(srv.URL, buf, nil, srv.Client(), sumalog.Discard())
	assert.False(t, f.Flush(ctx))
	assert.Len(t, buf.ReadAll(ctx), 1)
	assert.Len(t, collector.received(), 1)
}

func TestFlushKeepsBufferWhenUnreachable(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(ctx, numberedEvent(1))

	f := NewFlusher(url, buf, nil, nil, sumalog.Discard())
	assert.False(t, f.Flush(ctx))
	assert.Len(t, buf.ReadAll(ctx), 1)
}

func TestFlushNoopWithoutEndpointOrEvents(t *testing.T) {
	ctx := context.Background()
	beacon := &stubBeacon{accept: true}

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(ctx, numberedEvent(1))
	assert.False(t, NewFlusher("", buf, beacon, nil, sumalog.Discard()).Flush(ctx))
	assert.Len(t, buf.ReadAll(ctx), 1)

	empty := newBuffer(repository.NewMemoryStore())
	assert.False(t, NewFlusher("http://collector.invalid", empty, beacon, nil, sumalog.Discard()).Flush(ctx))
	assert.Empty(t, beacon.sent)
}

func TestFlushPrefersBeacon(t *testing.T) {
	ctx := context.Background()
	collector := &collectorStub{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(collector.handler))
	defer srv.Close()

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(ctx, numberedEvent(1))

	beacon := &stubBeacon{accept: true}
	f := NewFlusher(srv.URL, buf, beacon, srv.Client(), sumalog.Discard())

	assert.True(t, f.Flush(ctx))
	assert.Len(t, beacon.sent, 1)
	assert.Empty(t, collector.received())
	assert.Empty(t, buf.ReadAll(ctx))
}

func TestFlushFallsBackWhenBeaconRejects(t *testing.T) {
	ctx := context.Background()
	collector := &collectorStub{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(collector.handler))
	defer srv.Close()

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(ctx, numberedEvent(1))

	beacon := &stubBeacon{accept: false}
	f := NewFlusher(srv.URL, buf, beacon, srv.Client(), sumalog.Discard())

	assert.True(t, f.Flush(ctx))
	assert.Len(t, beacon.sent, 1)
	assert.Len(t, collector.received(), 1)
}

func TestFlushIgnoresCallerCancellation(t *testing.T) {
	collector := &collectorStub{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(collector.handler))
	defer srv.Close()

	buf := newBuffer(repository.NewMemoryStore())
	buf.Append(context.Background(), numberedEvent(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFlusher(srv.URL, buf, nil, srv.Client(), sumalog.Discard())
	assert.True(t, f.Flush(ctx))
	assert.Len(t, collector.received(), 1)
}

func TestQueuedBeaconDelivers(t *testing.T) {
	collector := &collectorStub{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(collector.handler))
	defer srv.Close()

	beacon := NewQueuedBeacon(srv.Client(), 4, sumalog.Discard())
	payload, err := json.Marshal(model.FlushPayload{Events: []model.MetricEvent{numberedEvent(1)}})
	require.NoError(t, err)

	assert.True(t, beacon.Send(srv.URL, payload))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	beacon.Stop(ctx)

	assert.Len(t, collector.received(), 1)
	assert.False(t, beacon.Send(srv.URL, payload), "stopped beacon must reject")
}
