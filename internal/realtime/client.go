package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// conn is the subset of *websocket.Conn the client needs; tests substitute
// a fake.
type conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the wire envelope for everything sent over a connection. Incoming
// data is kept raw so each event type decodes its own payload.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one live connection of one authenticated user. A user can hold
// several clients at once (multiple tabs/devices).
type Client struct {
	ID     string
	UserID string

	conn      conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewClient wraps an upgraded websocket connection.
func NewClient(userID string, ws *websocket.Conn) *Client {
	return newClient(userID, ws)
}

func newClient(userID string, c conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   c,
	}
}

// Send writes one event to the connection. gorilla/websocket allows a single
// concurrent writer, hence the mutex.
func (c *Client) Send(event string, data interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(outEvent{Event: event, Data: data})
}

// ReadEvent blocks until the next event arrives or the connection dies.
func (c *Client) ReadEvent() (*Event, error) {
	var ev Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Close shuts the underlying connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}
