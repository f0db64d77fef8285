package inspector

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrHubClosed is returned by Publish after Close.
var ErrHubClosed = errors.New("inspector hub closed")

// client is one connected websocket viewer.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// hub implements the Hub interface.
type hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	closed  bool

	upgrader     websocket.Upgrader
	sendBuffer   int
	writeTimeout time.Duration
	logger       *slog.Logger
}

// Hub streams animator poses to websocket clients.
// Publishing never blocks the caller: a client whose queue is full misses that frame.
type Hub interface {
	http.Handler

	// Publish broadcasts a frame to every connected client.
	//
	// Parameters:
	//   - f: the frame to send
	//
	// Returns:
	//   - error: ErrHubClosed after Close, or a JSON encoding error
	Publish(f Frame) error

	// ClientCount returns the number of connected clients.
	//
	// Returns:
	//   - int: the client count
	ClientCount() int

	// Close disconnects every client and rejects new connections.
	//
	// Returns:
	//   - error: always nil, present for io.Closer compatibility
	Close() error
}

var _ Hub = &hub{}

// NewHub creates a new Hub with the provided options.
//
// Parameters:
//   - options: functional options for hub configuration
//
// Returns:
//   - Hub: the newly created hub
func NewHub(options ...HubBuilderOption) Hub {
	h := &hub{
		clients: make(map[uuid.UUID]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sendBuffer:   16,
		writeTimeout: 5 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "inspector closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}

	hello, _ := json.Marshal(helloMessage{Type: TypeHello, Client: c.id})
	c.send <- hello

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Debug("inspector client connected", "client", c.id, "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages until the connection fails, then unregisters the client.
func (h *hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the client's queue until it is closed.
func (h *hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("inspector write failed", "client", c.id, "error", err)
			return
		}
	}
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(h.writeTimeout))
}

// remove unregisters a client and closes its queue exactly once.
func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	h.logger.Debug("inspector client disconnected", "client", c.id)
}

func (h *hub) Publish(f Frame) error {
	if f.Type == "" {
		f.Type = TypePose
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("inspector client lagging, frame dropped", "client", c.id)
		}
	}
	return nil
}

func (h *hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
	return nil
}
