package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusStore receives the durable presence snapshot. Writes are best-effort:
// a failure is logged and never interrupts the connection lifecycle.
type StatusStore interface {
	SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error
}

// Presence tracks which users currently hold live connections. A user is
// online while at least one client is registered. The registry is created at
// service start and injected wherever it is needed; there are no package
// globals.
type Presence struct {
	mu     sync.Mutex
	conns  map[string]map[string]*Client // userID -> clientID -> client
	status StatusStore
}

// NewPresence creates an empty registry backed by the given status store.
func NewPresence(status StatusStore) *Presence {
	return &Presence{
		conns:  make(map[string]map[string]*Client),
		status: status,
	}
}

// Register adds a client and reports whether it is the user's first live
// connection. On the first connection the durable is_online flag is flipped
// asynchronously.
func (p *Presence) Register(c *Client) bool {
	p.mu.Lock()
	clients, ok := p.conns[c.UserID]
	if !ok {
		clients = make(map[string]*Client)
		p.conns[c.UserID] = clients
	}
	clients[c.ID] = c
	first := len(clients) == 1
	p.mu.Unlock()

	if first {
		go p.persist(c.UserID, true)
	}
	return first
}

// Unregister removes a client and reports whether the user went offline as a
// result. Unregistering a client that was never registered (or already
// removed) is a no-op, so teardown can race with a failed registration.
func (p *Presence) Unregister(c *Client) bool {
	p.mu.Lock()
	clients, ok := p.conns[c.UserID]
	if !ok {
		p.mu.Unlock()
		return false
	}
	if _, ok := clients[c.ID]; !ok {
		p.mu.Unlock()
		return false
	}
	delete(clients, c.ID)
	last := len(clients) == 0
	if last {
		delete(p.conns, c.UserID)
	}
	p.mu.Unlock()

	if last {
		go p.persist(c.UserID, false)
	}
	return last
}

// Connections returns a snapshot of the user's live clients.
func (p *Presence) Connections(userID string) []*Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	clients := make([]*Client, 0, len(p.conns[userID]))
	for _, c := range p.conns[userID] {
		clients = append(clients, c)
	}
	return clients
}

// Online reports whether the user has at least one live connection.
func (p *Presence) Online(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns[userID]) > 0
}

// Clients returns a snapshot of every live client across all users.
func (p *Presence) Clients() []*Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	var all []*Client
	for _, clients := range p.conns {
		for _, c := range clients {
			all = append(all, c)
		}
	}
	return all
}

func (p *Presence) persist(userID string, online bool) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		logrus.WithField("userID", userID).Warn("Invalid user ID in presence registry")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.status.SetOnline(ctx, id, online); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"userID": userID,
			"online": online,
		}).Error("Failed to persist presence snapshot")
	}
}
