package http

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub fans engine events out to the websocket connections of one game
// room. It implements app.Broadcaster: delivery is fire-and-forget and a
// slow client drops messages instead of blocking the round.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*roomClient]struct{}
}

type roomClient struct {
	conn *websocket.Conn
	send chan []byte
	room string
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*roomClient]struct{})}
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Emit broadcasts one event to every connection in a room.
func (h *Hub) Emit(event string, payload any, room string) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Warn("dropping unmarshalable broadcast")
		return
	}
	msg, err := json.Marshal(envelope{Type: event, Payload: raw})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Warn("dropping unmarshalable broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- msg:
		default:
			logrus.WithFields(logrus.Fields{"room": room, "event": event}).
				Warn("client send buffer full, dropping event")
		}
	}
}

// RoomSize returns the number of connections currently in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) join(client *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[client.room] == nil {
		h.rooms[client.room] = make(map[*roomClient]struct{})
	}
	h.rooms[client.room][client] = struct{}{}
}

func (h *Hub) leave(client *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[client.room]; ok {
		if _, member := clients[client]; member {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.rooms, client.room)
		}
	}
}
