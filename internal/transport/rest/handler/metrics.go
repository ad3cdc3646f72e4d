package handler

import (
	"errors"
	"net/http"
	"strconv"

	"suma/internal/cache"
	"suma/internal/model"
	"suma/internal/service"
)

// MetricsHandler exposes the tracker and the collector over HTTP
type MetricsHandler struct {
	tracker   *service.Tracker
	flusher   *service.Flusher
	collector *service.CollectorService
	capacity  int
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(tracker *service.Tracker, flusher *service.Flusher, collector *service.CollectorService, capacity int) *MetricsHandler {
	return &MetricsHandler{tracker: tracker, flusher: flusher, collector: collector, capacity: capacity}
}

// Track handles POST /v1/metrics/events
func (h *MetricsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req model.TrackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	referrer := req.Referrer
	if referrer == "" {
		referrer = r.Referer()
	}
	page := model.PageContext{
		Path:      req.Path,
		Referrer:  referrer,
		UserAgent: r.UserAgent(),
		VisitorID: req.SessionID,
	}

	event, err := h.tracker.Track(r.Context(), req.Type, req.Metadata, page)
	if err != nil {
		if errors.Is(err, service.ErrUnknownEventType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}
	writeJSON(w, http.StatusAccepted, event)
}

// Visibility handles POST /v1/metrics/visibility
func (h *MetricsHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	var req model.VisibilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	flushing := h.tracker.VisibilityChanged(r.Context(), req.State)
	writeJSON(w, http.StatusAccepted, map[string]bool{"flushing": flushing})
}

// Unload handles POST /v1/metrics/unload
func (h *MetricsHandler) Unload(w http.ResponseWriter, r *http.Request) {
	flushed := h.tracker.Unload(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"flushed": flushed})
}

// Collect handles POST /v1/metrics/collect
func (h *MetricsHandler) Collect(w http.ResponseWriter, r *http.Request) {
	var payload model.FlushPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	batch, err := h.collector.Accept(r.Context(), &payload, r.RemoteAddr)
	if err != nil {
		if errors.Is(err, service.ErrEmptyBatch) || errors.Is(err, service.ErrUnknownEventType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to archive batch")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"id": batch.ID, "events": len(batch.Events)})
}

// Buffer handles GET /v1/metrics/buffer
func (h *MetricsHandler) Buffer(w http.ResponseWriter, r *http.Request) {
	events := h.tracker.Buffered(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events":   events,
		"count":    len(events),
		"capacity": h.capacity,
	})
}

// Flush handles POST /v1/metrics/flush
func (h *MetricsHandler) Flush(w http.ResponseWriter, r *http.Request) {
	flushed := h.flusher.Flush(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"flushed": flushed})
}

// Batches handles GET /v1/metrics/batches
func (h *MetricsHandler) Batches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	batches, err := h.collector.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}
	if batches == nil {
		batches = []*model.MetricBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

// Summary handles GET /v1/metrics/summary
func (h *MetricsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.collector.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	if counts == nil {
		counts = []cache.EventCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}
