package ws

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeConn struct {
	mu      sync.Mutex
	writes  [][]byte
	fail    bool
	closed  bool
	busy    int32
	overlap int32
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if !atomic.CompareAndSwapInt32(&c.busy, 0, 1) {
		atomic.StoreInt32(&c.overlap, 1)
	}
	defer atomic.StoreInt32(&c.busy, 0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	c.writes = append(c.writes, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHub_Broadcast(t *testing.T) {
	t.Run("reaches only the target event", func(t *testing.T) {
		hub := NewHub()
		a, b, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
		hub.AddConnection(1, a)
		hub.AddConnection(1, b)
		hub.AddConnection(2, other)

		hub.Broadcast(1, WSMessage{Type: MessagePostCreated})

		if a.writeCount() != 1 || b.writeCount() != 1 {
			t.Errorf("expected one write per event watcher, got %d and %d", a.writeCount(), b.writeCount())
		}
		if other.writeCount() != 0 {
			t.Errorf("other event received %d writes", other.writeCount())
		}
	})

	t.Run("evicts failed connections", func(t *testing.T) {
		hub := NewHub()
		healthy, broken := &fakeConn{}, &fakeConn{fail: true}
		hub.AddConnection(1, healthy)
		hub.AddConnection(1, broken)

		hub.Broadcast(1, WSMessage{Type: MessageLikeToggled})
		if !broken.isClosed() {
			t.Error("failed connection must be closed")
		}

		broken.mu.Lock()
		broken.fail = false
		broken.mu.Unlock()

		hub.Broadcast(1, WSMessage{Type: MessageLikeToggled})
		if broken.writeCount() != 0 {
			t.Errorf("evicted connection still received %d writes", broken.writeCount())
		}
		if healthy.writeCount() != 2 {
			t.Errorf("healthy connection expected 2 writes, got %d", healthy.writeCount())
		}
	})

	t.Run("concurrent broadcasts with failures are safe", func(t *testing.T) {
		hub := NewHub()
		conns := []*fakeConn{{}, {fail: true}, {}, {fail: true}}
		for _, c := range conns {
			hub.AddConnection(1, c)
		}

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				hub.Broadcast(1, WSMessage{Type: MessageCommentAdded})
			}()
		}
		wg.Wait()

		for i, c := range conns {
			if atomic.LoadInt32(&c.overlap) != 0 {
				t.Errorf("conn %d saw overlapping writes", i)
			}
		}
	})
}

func TestHub_RemoveConnection(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.AddConnection(1, conn)

	hub.RemoveConnection(1, conn)
	if !conn.isClosed() {
		t.Error("removed connection must be closed")
	}

	// Removing twice (read-loop exit racing an eviction) is a no-op.
	hub.RemoveConnection(1, conn)

	hub.Broadcast(1, WSMessage{Type: MessageDrawCompleted})
	if conn.writeCount() != 0 {
		t.Errorf("removed connection received %d writes", conn.writeCount())
	}
}
