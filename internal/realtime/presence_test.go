package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeConn struct {
	mu     sync.Mutex
	events []outEvent
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v.(outEvent))
	return nil
}

func (f *fakeConn) ReadJSON(v interface{}) error {
	select {} // hub/presence tests never read
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) sent() []outEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]outEvent(nil), f.events...)
}

type statusCall struct {
	id     primitive.ObjectID
	online bool
}

type fakeStatusStore struct {
	mu    sync.Mutex
	calls []statusCall
}

func (f *fakeStatusStore) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, statusCall{id: id, online: online})
	return nil
}

func (f *fakeStatusStore) snapshot() []statusCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusCall(nil), f.calls...)
}

func TestPresence_RegisterFirstAndLast(t *testing.T) {
	status := &fakeStatusStore{}
	p := NewPresence(status)

	userID := primitive.NewObjectID()
	c1 := newClient(userID.Hex(), &fakeConn{})
	c2 := newClient(userID.Hex(), &fakeConn{})

	require.True(t, p.Register(c1))
	require.False(t, p.Register(c2))
	require.True(t, p.Online(userID.Hex()))
	require.Len(t, p.Connections(userID.Hex()), 2)

	// The durable snapshot write is asynchronous; wait for it before
	// triggering the offline transition.
	require.Eventually(t, func() bool {
		calls := status.snapshot()
		return len(calls) == 1 && calls[0] == statusCall{id: userID, online: true}
	}, time.Second, 10*time.Millisecond)

	require.False(t, p.Unregister(c1))
	require.True(t, p.Online(userID.Hex()))

	require.True(t, p.Unregister(c2))
	require.False(t, p.Online(userID.Hex()))
	require.Empty(t, p.Connections(userID.Hex()))

	require.Eventually(t, func() bool {
		calls := status.snapshot()
		return len(calls) == 2 && calls[1] == statusCall{id: userID, online: false}
	}, time.Second, 10*time.Millisecond)
}

func TestPresence_UnregisterIsIdempotent(t *testing.T) {
	status := &fakeStatusStore{}
	p := NewPresence(status)

	userID := primitive.NewObjectID()
	c := newClient(userID.Hex(), &fakeConn{})

	require.True(t, p.Register(c))
	require.Eventually(t, func() bool {
		return len(status.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	require.True(t, p.Unregister(c))

	// Second unregister of the same handle is a no-op.
	require.False(t, p.Unregister(c))

	require.Eventually(t, func() bool {
		return len(status.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Len(t, status.snapshot(), 2)
}

func TestPresence_UnregisterUnknownClient(t *testing.T) {
	p := NewPresence(&fakeStatusStore{})

	c := newClient(primitive.NewObjectID().Hex(), &fakeConn{})
	require.False(t, p.Unregister(c))
}

func TestPresence_IndependentUsers(t *testing.T) {
	p := NewPresence(&fakeStatusStore{})

	a := newClient(primitive.NewObjectID().Hex(), &fakeConn{})
	b := newClient(primitive.NewObjectID().Hex(), &fakeConn{})

	require.True(t, p.Register(a))
	require.True(t, p.Register(b))
	require.True(t, p.Unregister(a))
	require.True(t, p.Online(b.UserID))
}
