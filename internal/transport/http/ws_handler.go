package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

type WSHandler struct {
	registry *app.Registry
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *app.Registry) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type startQuizPayload struct {
	RoomID string `json:"roomId"`
}

type submitAnswerPayload struct {
	RoomID        string `json:"roomId"`
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload,omitempty"`
}

type leaderboardPayload struct {
	Leaderboard domain.Leaderboard `json:"leaderboard"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and bridges it into room operations: at
// most one (room, player) attachment per connection, inbound messages
// decoded at this boundary, room broadcasts fanned out in production order.
// Errors stay scoped to this connection and are never broadcast.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var (
		room        *app.Room
		unsubscribe func()
		eventsDone  chan struct{}
	)

	sendError := func(message string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "join_room":
			var payload joinRoomPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError("invalid join_room payload")
				continue
			}
			if room != nil {
				sendError("already joined a room")
				continue
			}
			joined, err := h.registry.GetRoom(payload.RoomID)
			if err != nil {
				sendError("Room not found")
				continue
			}
			// Subscribe before joining so this connection sees its own
			// roster update.
			events, cancel := joined.Subscribe()
			joined.Join(connID, payload.Username)

			room = joined
			unsubscribe = cancel
			eventsDone = make(chan struct{})
			go forwardEvents(events, send, closeSignals, eventsDone)
			log.Printf("connection %s joined room %s as %q", connID, joined.ID(), payload.Username)

		case "start_quiz":
			var payload startQuizPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError("invalid start_quiz payload")
				continue
			}
			target, ok := h.resolveAttached(room, payload.RoomID, sendError)
			if !ok {
				continue
			}
			if err := target.Start(); err != nil {
				sendError(err.Error())
			}

		case "submit_answer":
			var payload submitAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError("invalid submit_answer payload")
				continue
			}
			target, ok := h.resolveAttached(room, payload.RoomID, sendError)
			if !ok {
				continue
			}
			// Stale or repeated submissions are dropped inside the room.
			target.SubmitAnswer(connID, payload.QuestionIndex, payload.Answer)

		default:
			sendError("unsupported message type")
		}
	}

	// Disconnect drops the attachment and subscription; the player record
	// inside the room is retained as-is.
	if unsubscribe != nil {
		unsubscribe()
	}
	close(closeSignals)
	if eventsDone != nil {
		<-eventsDone
	}
	close(send)
	<-writerDone
}

// resolveAttached checks that the message targets the room this connection
// is attached to.
func (h *WSHandler) resolveAttached(room *app.Room, roomID string, sendError func(string)) (*app.Room, bool) {
	if _, err := h.registry.GetRoom(roomID); err != nil {
		sendError("Room not found")
		return nil, false
	}
	if room == nil {
		sendError("join a room first")
		return nil, false
	}
	if room.ID() != strings.ToUpper(roomID) {
		sendError("not joined to this room")
		return nil, false
	}
	return room, true
}

func forwardEvents(events <-chan domain.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			select {
			case send <- outboundFromEvent(event):
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

func outboundFromEvent(event domain.Event) outboundMessage[any] {
	switch event.Type {
	case domain.EventPlayerJoined:
		return outboundMessage[any]{Type: string(event.Type), Payload: event.Roster}
	case domain.EventNewQuestion:
		return outboundMessage[any]{Type: string(event.Type), Payload: event.Question}
	case domain.EventQuizEnded:
		return outboundMessage[any]{Type: string(event.Type), Payload: leaderboardPayload{Leaderboard: *event.Leaderboard}}
	default:
		return outboundMessage[any]{Type: string(event.Type)}
	}
}
