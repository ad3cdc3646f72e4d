package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"suma/internal/model"
)

// Flusher delivers the buffered events to the collector, beacon first and
// POST second, and clears the buffer only once delivery was accepted.
// Flushes are not mutually exclusive; two triggers racing may send the same
// events twice.
type Flusher struct {
	endpoint string
	buffer   *EventBuffer
	beacon   Beacon
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time
}

// NewFlusher creates a flusher. beacon may be nil; an empty endpoint disables delivery.
func NewFlusher(endpoint string, buffer *EventBuffer, beacon Beacon, client *http.Client, logger *slog.Logger) *Flusher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Flusher{
		endpoint: endpoint,
		buffer:   buffer,
		beacon:   beacon,
		client:   client,
		logger:   logger.With("component", "flusher"),
		now:      time.Now,
	}
}

// Flush attempts one delivery and reports whether the buffer was cleared.
// It never returns an error; failures leave the buffer for the next trigger.
func (f *Flusher) Flush(ctx context.Context) bool {
	if f.endpoint == "" {
		return false
	}

	events := f.buffer.ReadAll(ctx)
	if len(events) == 0 {
		return false
	}

	payload, err := json.Marshal(model.FlushPayload{
		Events:    events,
		FlushedAt: model.ISOTimestamp(f.now()),
	})
	if err != nil {
		f.logger.Warn("failed to encode flush payload", "error", err)
		return false
	}

	if f.sendBeacon(payload) {
		f.buffer.Clear(ctx)
		return true
	}

	if f.post(ctx, payload) {
		f.buffer.Clear(ctx)
		return true
	}
	return false
}

// FlushAsync runs Flush on a detached goroutine; the caller's cancellation
// does not abort a send that already started.
func (f *Flusher) FlushAsync(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	detach(f.logger, "flush", func() {
		f.Flush(ctx)
	})
}

func (f *Flusher) sendBeacon(payload []byte) (ok bool) {
	if f.beacon == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn("beacon send failed", "error", r)
			ok = false
		}
	}()
	return f.beacon.Send(f.endpoint, payload)
}

func (f *Flusher) post(ctx context.Context, payload []byte) bool {
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		f.logger.Warn("flush failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("flush failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("collector rejected flush", "status", resp.StatusCode)
		return false
	}
	return true
}
