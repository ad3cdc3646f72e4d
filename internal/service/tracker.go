package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"suma/internal/model"
)

// Tracker records landing-site interactions into the event buffer and
// triggers delivery.
type Tracker struct {
	buffer   *EventBuffer
	flusher  *Flusher
	visitors *VisitorIDs
	logger   *slog.Logger
	now      func() time.Time

	manualFlush bool
}

// NewTracker creates a tracker
func NewTracker(buffer *EventBuffer, flusher *Flusher, visitors *VisitorIDs, logger *slog.Logger) *Tracker {
	return &Tracker{
		buffer:   buffer,
		flusher:  flusher,
		visitors: visitors,
		logger:   logger.With("component", "tracker"),
		now:      time.Now,
	}
}

// DisableAutoFlush stops Track from starting background flushes; the owner
// then calls Unload before exiting
func (t *Tracker) DisableAutoFlush() {
	t.manualFlush = true
}

// Track builds an event from metadata and the page context, buffers it and
// starts a detached flush. Page keys overwrite caller keys of the same name.
func (t *Tracker) Track(ctx context.Context, eventType model.MetricEventType, metadata map[string]interface{}, page model.PageContext) (model.MetricEvent, error) {
	if !eventType.Valid() {
		return model.MetricEvent{}, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}

	sessionID := page.VisitorID
	if sessionID == "" {
		sessionID = t.visitors.Get(ctx)
	}

	event := model.MetricEvent{
		Type:      eventType,
		Timestamp: model.ISOTimestamp(t.now()),
		SessionID: sessionID,
		Metadata:  enrich(metadata, page),
	}

	t.buffer.Append(ctx, event)
	if !t.manualFlush {
		t.flusher.FlushAsync(ctx)
	}
	return event, nil
}

// Visit records the landing page view
func (t *Tracker) Visit(ctx context.Context, page model.PageContext) (model.MetricEvent, error) {
	return t.Track(ctx, model.EventVisit, map[string]interface{}{"url": page.URL}, page)
}

// VisibilityChanged flushes in the background when the page became hidden
func (t *Tracker) VisibilityChanged(ctx context.Context, state string) bool {
	if state != "hidden" {
		return false
	}
	t.flusher.FlushAsync(ctx)
	return true
}

// Unload performs the final flush and waits for it
func (t *Tracker) Unload(ctx context.Context) bool {
	return t.flusher.Flush(ctx)
}

// Buffered returns the events waiting for delivery
func (t *Tracker) Buffered(ctx context.Context) []model.MetricEvent {
	return t.buffer.ReadAll(ctx)
}

func enrich(metadata map[string]interface{}, page model.PageContext) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata)+3)
	for k, v := range metadata {
		out[k] = v
	}

	out["path"] = page.Path
	if page.Referrer == "" {
		out["referrer"] = nil
	} else {
		out["referrer"] = page.Referrer
	}
	out["userAgent"] = page.UserAgent
	return out
}
