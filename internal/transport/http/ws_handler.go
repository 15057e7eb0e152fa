package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"quizpin-service/internal/app"
	"quizpin-service/internal/domain"
)

// WSHandler upgrades player connections and wires them into a game room.
// A connection with a name joins as a player; one without (the host
// screen) only watches the room's events.
type WSHandler struct {
	engine   *app.GameEngine
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.GameEngine, hub *Hub) *WSHandler {
	return &WSHandler{
		engine: engine,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type answerPayload struct {
	Answer       string  `json:"answer"`
	ResponseTime float64 `json:"response_time"`
	Timeout      bool    `json:"timeout"`
}

type joinedPayload struct {
	PlayerID string `json:"player_id,omitempty"`
	Pin      string `json:"pin"`
	Name     string `json:"name,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS handles the player websocket endpoint.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gamePin := r.URL.Query().Get("pin")
	if !ValidPin(gamePin) {
		http.Error(w, "valid 6-digit pin required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	playerID := ""
	playerName := ""
	if rawName := r.URL.Query().Get("name"); rawName != "" {
		name, ok := SanitizePlayerName(rawName)
		if !ok {
			writeDirect(conn, "error", errorPayload{Message: "invalid player name"})
			return
		}
		playerID = uuid.NewString()
		player, err := h.engine.AdmitPlayer(r.Context(), gamePin, playerID, name)
		if err != nil {
			writeDirect(conn, "error", errorPayload{Message: rejectionMessage(err)})
			return
		}
		playerName = player.Name
	}

	client := &roomClient{conn: conn, send: make(chan []byte, 16), room: gamePin}
	h.hub.join(client)
	defer h.hub.leave(client)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logrus.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	h.sendTo(client, "joined", joinedPayload{PlayerID: playerID, Pin: gamePin, Name: playerName})

	for {
		var inbound envelope
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			if playerID == "" {
				h.sendTo(client, "error", errorPayload{Message: "spectators cannot answer"})
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendTo(client, "error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			answer := SanitizeAnswer(payload.Answer)
			if answer == "" && !payload.Timeout {
				h.sendTo(client, "error", errorPayload{Message: "answer must not be empty"})
				continue
			}
			err := h.engine.SubmitAnswer(r.Context(), gamePin, playerID, answer, payload.ResponseTime, payload.Timeout)
			if err != nil {
				h.sendTo(client, "error", errorPayload{Message: rejectionMessage(err)})
				continue
			}
			h.sendTo(client, "answer_ack", map[string]any{"response_time": payload.ResponseTime})
		default:
			h.sendTo(client, "error", errorPayload{Message: "unknown message type"})
		}
	}

	// leave is idempotent; closing the send channel here lets the writer
	// drain and exit before the connection is torn down.
	h.hub.leave(client)
	<-writerDone
}

// sendTo queues a direct message for one client through its send channel
// so room broadcasts and replies never write concurrently.
func (h *WSHandler) sendTo(client *roomClient, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg, err := json.Marshal(envelope{Type: event, Payload: raw})
	if err != nil {
		return
	}
	select {
	case client.send <- msg:
	default:
	}
}

// writeDirect is used before the client joins the hub, while this
// goroutine is still the only writer.
func writeDirect(conn *websocket.Conn, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteJSON(envelope{Type: event, Payload: raw})
}

// rejectionMessage maps engine outcomes to the user-facing reason.
func rejectionMessage(err error) string {
	switch err {
	case domain.ErrGameNotFound:
		return "game not found"
	case domain.ErrGameStarted:
		return "game already started"
	case domain.ErrGameFull:
		return "game is full"
	case domain.ErrDuplicateName:
		return "name taken"
	case domain.ErrNotPlaying:
		return "game is not accepting answers"
	case domain.ErrAlreadyAnswered:
		return "already answered"
	case domain.ErrNoMoreQuestions:
		return "no more questions"
	case domain.ErrPlayerNotFound:
		return "player not found"
	default:
		return "internal error"
	}
}
