package model

import "time"

// MetricEventType is one of the fixed landing-site interaction kinds
type MetricEventType string

const (
	EventVisit         MetricEventType = "visit"
	EventSignUp        MetricEventType = "sign_up"
	EventCTAClick      MetricEventType = "cta_click"
	EventDemoTabSelect MetricEventType = "demo_tab_select"
	EventFAQResponse   MetricEventType = "faq_response"
	EventInteraction   MetricEventType = "interaction"
)

// MetricEventTypes lists every accepted event type
var MetricEventTypes = []MetricEventType{
	EventVisit,
	EventSignUp,
	EventCTAClick,
	EventDemoTabSelect,
	EventFAQResponse,
	EventInteraction,
}

// Valid reports whether t belongs to the fixed set
func (t MetricEventType) Valid() bool {
	for _, known := range MetricEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MetricEvent is a single tracked UI interaction
type MetricEvent struct {
	Type      MetricEventType        `json:"type" bson:"type"`
	Timestamp string                 `json:"timestamp" bson:"timestamp"`
	SessionID string                 `json:"sessionId" bson:"sessionId"`
	Metadata  map[string]interface{} `json:"metadata" bson:"metadata"`
}

// PageContext is the page-level information every event is enriched with
type PageContext struct {
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"userAgent"`
	URL       string `json:"url,omitempty"`
	// VisitorID overrides the locally stored visitor id when set
	VisitorID string `json:"visitorId,omitempty"`
}

// FlushPayload is the body delivered to the collector
type FlushPayload struct {
	Events    []MetricEvent `json:"events" validate:"required,dive"`
	FlushedAt string        `json:"flushedAt"`
}

// MetricBatch is a flushed payload as archived by the collector
type MetricBatch struct {
	ID         string        `json:"id" bson:"_id"`
	Events     []MetricEvent `json:"events" bson:"events"`
	FlushedAt  string        `json:"flushedAt" bson:"flushedAt"`
	ReceivedAt time.Time     `json:"receivedAt" bson:"receivedAt"`
	RemoteAddr string        `json:"remoteAddr,omitempty" bson:"remoteAddr,omitempty"`
}

// TrackRequest is the REST body for recording an event
type TrackRequest struct {
	Type     MetricEventType        `json:"type" validate:"required,oneof=visit sign_up cta_click demo_tab_select faq_response interaction"`
	Metadata map[string]interface{} `json:"metadata"`
	Path     string                 `json:"path"`
	Referrer string                 `json:"referrer"`
	// SessionID lets a browser keep its own visitor id
	SessionID string `json:"sessionId,omitempty"`
}

// VisibilityRequest reports a page visibility transition
type VisibilityRequest struct {
	State string `json:"state" validate:"required,oneof=hidden visible"`
}

// ISOTimestamp formats t the way browsers print Date.toISOString
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
