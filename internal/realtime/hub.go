package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub routes events to live connections: ad-hoc named rooms plus direct
// per-user delivery through the presence registry. Delivery is best-effort;
// durable persistence is the message store's job, not the hub's.
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]map[*Client]struct{}
	presence *Presence
}

// NewHub creates a hub on top of the given presence registry.
func NewHub(presence *Presence) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		presence: presence,
	}
}

// JoinRoom adds the client to a room, creating the room on first join.
func (h *Hub) JoinRoom(c *Client, room string) {
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"client": c.ID,
		"room":   room,
	}).Info("Client joined room")
}

// LeaveAll removes the client from every room it joined. Empty rooms are
// deleted.
func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// SendToRoom delivers an event to every member of the room except the
// sender. An unknown or empty room is a silent no-op.
func (h *Hub) SendToRoom(room, event string, data interface{}, except *Client) {
	h.mu.Lock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		if c != except {
			members = append(members, c)
		}
	}
	h.mu.Unlock()

	for _, c := range members {
		if err := c.Send(event, data); err != nil {
			logrus.WithError(err).WithField("client", c.ID).Warn("Room delivery failed")
		}
	}
}

// SendToUser delivers an event to every live connection of the user. A user
// with no connections is a silent no-op.
func (h *Hub) SendToUser(userID, event string, data interface{}) {
	for _, c := range h.presence.Connections(userID) {
		if err := c.Send(event, data); err != nil {
			logrus.WithError(err).WithField("client", c.ID).Warn("User delivery failed")
		}
	}
}

// Broadcast delivers an event to every live connection except the sender.
func (h *Hub) Broadcast(event string, data interface{}, except *Client) {
	for _, c := range h.presence.Clients() {
		if c == except {
			continue
		}
		if err := c.Send(event, data); err != nil {
			logrus.WithError(err).WithField("client", c.ID).Warn("Broadcast delivery failed")
		}
	}
}
