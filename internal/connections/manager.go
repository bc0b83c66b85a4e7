package connections

import (
	"sync"
	"time"

	"github.com/deepgram/shopfront/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Client is one assistant socket bound to a browsing session. Writes are
// serialised; gorilla connections allow a single concurrent writer.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	timeouts  TimeoutConfig

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// WriteJSON sends v as a text frame within the write deadline.
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeouts.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// KeepAlive arms the pong deadline and pings until Close.
func (c *Client) KeepAlive() {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeouts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.timeouts.PongWait))
	})

	go func() {
		ticker := time.NewTicker(c.timeouts.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.writeMu.Lock()
				err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.timeouts.WriteWait))
				c.writeMu.Unlock()
				if err != nil {
					log.Debug().Err(err).Str("session_id", c.sessionID).Msg("Assistant socket ping failed")
					return
				}
			case <-c.done:
				return
			}
		}
	}()
}

// Close stops the ping loop. It does not close the underlying connection.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Manager handles WebSocket connection lifecycle
type Manager struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*Client
	timeouts TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		clients:  make(map[*websocket.Conn]*Client),
		timeouts: timeouts,
	}
}

// AddConnection registers conn for sessionID and returns its client.
func (m *Manager) AddConnection(conn *websocket.Conn, sessionID string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.clients[conn]; ok {
		return existing
	}
	c := &Client{
		conn:      conn,
		sessionID: sessionID,
		timeouts:  m.timeouts,
		done:      make(chan struct{}),
	}
	m.clients[conn] = c
	metrics.ActiveSockets.Inc()
	return c
}

// RemoveConnection removes a WebSocket connection and stops its pings
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	m.mu.Lock()
	c, ok := m.clients[conn]
	delete(m.clients, conn)
	m.mu.Unlock()

	if ok {
		c.Close()
		metrics.ActiveSockets.Dec()
	}
}

// GetConnectionCount returns the current number of active connections
func (m *Manager) GetConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// HasConnection checks if a specific connection exists
func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.clients[conn]
	return exists
}

// SessionClients returns the open sockets of one browsing session, e.g. two
// tabs sharing a cart.
func (m *Manager) SessionClients(sessionID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Client
	for _, c := range m.clients {
		if c.sessionID == sessionID {
			out = append(out, c)
		}
	}
	return out
}

// Broadcast writes v to every socket of sessionID, returning how many succeeded.
func (m *Manager) Broadcast(sessionID string, v interface{}) int {
	sent := 0
	for _, c := range m.SessionClients(sessionID) {
		if err := c.WriteJSON(v); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("Dropped broadcast to assistant socket")
			continue
		}
		sent++
	}
	return sent
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

// SetTimeouts updates the timeout configuration for connections added later
func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}
