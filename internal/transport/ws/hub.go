package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"suma/internal/model"
	"suma/internal/service"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server message types
const (
	MsgCommentState MessageType = "comment_state"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks live comment connections. Each connection owns one watcher,
// torn down when the connection unregisters.
type Hub struct {
	conns map[string]*Connection
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	quit       chan struct{}
	stopOnce   sync.Once

	logger *slog.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	ID      string
	Send    chan []byte
	Watcher *service.CommentWatcher

	mu     sync.Mutex
	closed bool
}

// enqueue hands msg to the write pump, dropping it when the buffer is full
// or the connection is gone
func (c *Connection) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		quit:       make(chan struct{}),
		logger:     logger.With("component", "ws_hub"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			h.mu.Unlock()
			h.logger.Debug("comment watcher connected", "conn_id", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				delete(h.conns, conn.ID)
				h.teardown(conn)
				h.logger.Debug("comment watcher disconnected", "conn_id", conn.ID)
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for id, conn := range h.conns {
				delete(h.conns, id)
				h.teardown(conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

// teardown closes the watcher before Send; a closed watcher never publishes again
func (h *Hub) teardown(conn *Connection) {
	if conn.Watcher != nil {
		conn.Watcher.Close()
	}
	conn.close()
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.quit:
		h.teardown(conn)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Stop closes every connection and stops the hub
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// push encodes a message and enqueues it without blocking
func push(conn *Connection, msgType MessageType, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	msg, err := json.Marshal(&Message{Type: msgType, Payload: data})
	if err != nil {
		return false
	}
	return conn.enqueue(msg)
}

func pushState(conn *Connection, state model.CommentState) bool {
	return push(conn, MsgCommentState, model.NewCommentResponse(state))
}
