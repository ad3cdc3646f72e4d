package service

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
)

// Beacon is a fire-and-forget transport. Send reports whether the payload was
// accepted for delivery, not whether the collector received it.
type Beacon interface {
	Send(url string, payload []byte) bool
}

type beaconItem struct {
	url     string
	payload []byte
}

// QueuedBeacon accepts payloads into a bounded queue and POSTs them from a
// background worker. A full or stopped queue rejects the payload.
type QueuedBeacon struct {
	client *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	queue   chan beaconItem
	stopped bool
	done    chan struct{}
}

// NewQueuedBeacon starts the delivery worker
func NewQueuedBeacon(client *http.Client, size int, logger *slog.Logger) *QueuedBeacon {
	if size <= 0 {
		size = 64
	}
	b := &QueuedBeacon{
		client: client,
		logger: logger.With("component", "beacon"),
		queue:  make(chan beaconItem, size),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Send enqueues payload without blocking
func (b *QueuedBeacon) Send(url string, payload []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return false
	}
	select {
	case b.queue <- beaconItem{url: url, payload: payload}:
		return true
	default:
		b.logger.Warn("beacon queue full, rejecting payload")
		return false
	}
}

// Stop rejects new payloads and waits for queued ones until ctx ends
func (b *QueuedBeacon) Stop(ctx context.Context) {
	b.mu.Lock()
	if !b.stopped {
		b.stopped = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
	case <-ctx.Done():
		b.logger.Warn("beacon stopped before queue drained", "error", ctx.Err())
	}
}

func (b *QueuedBeacon) run() {
	defer close(b.done)
	for item := range b.queue {
		b.deliver(item)
	}
}

func (b *QueuedBeacon) deliver(item beaconItem) {
	req, err := http.NewRequest(http.MethodPost, item.url, bytes.NewReader(item.payload))
	if err != nil {
		b.logger.Warn("beacon request invalid", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("beacon delivery failed", "error", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		b.logger.Warn("beacon rejected by collector", "status", resp.StatusCode)
	}
}
