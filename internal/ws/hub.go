package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Message types pushed to event watchers.
const (
	MessageParticipantRegistered = "participant_registered"
	MessageDrawCompleted         = "draw_completed"
	MessagePostCreated           = "post_created"
	MessageCommentAdded          = "comment_added"
	MessageLikeToggled           = "like_toggled"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client wraps a connection with its own write lock; gorilla supports at most
// one concurrent writer per connection.
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans wall and lifecycle updates out to everyone watching an event.
type Hub struct {
	mu     sync.RWMutex
	events map[uint]map[Conn]*client
}

func NewHub() *Hub {
	return &Hub{
		events: make(map[uint]map[Conn]*client),
	}
}

func (h *Hub) AddConnection(eventID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.events[eventID] == nil {
		h.events[eventID] = make(map[Conn]*client)
	}
	h.events[eventID][conn] = &client{conn: conn}
	log.Printf("ws: client joined event %d (watching: %d)", eventID, len(h.events[eventID]))
}

func (h *Hub) RemoveConnection(eventID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.events[eventID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	conn.Close()
	if len(conns) == 0 {
		delete(h.events, eventID)
	}
	log.Printf("ws: client left event %d", eventID)
}

// Broadcast sends the message to every watcher of the event. Writes happen
// outside the hub lock on a snapshot of the watcher set; connections that
// fail are evicted afterwards under the write lock, so concurrent broadcasts
// never mutate the map they are iterating.
func (h *Hub) Broadcast(eventID uint, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.events[eventID]))
	for _, c := range h.events[eventID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var dead []Conn
	for _, c := range clients {
		if err := c.write(data); err != nil {
			log.Printf("ws: write to event %d watcher failed: %v", eventID, err)
			dead = append(dead, c.conn)
		}
	}
	for _, conn := range dead {
		h.RemoveConnection(eventID, conn)
	}
}
