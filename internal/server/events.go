package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/liaweb/lia-engine/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// eventBacklog bounds the per-connection outgoing queue; a client that
// cannot keep up loses the oldest events rather than stalling the pipeline.
const eventBacklog = 64

// EventsHandler streams session events (stable gestures, combo updates)
// to WebSocket clients.
type EventsHandler struct {
	clients map[*websocket.Conn]chan session.Event
	mu      sync.RWMutex
}

// NewEventsHandler creates an EventsHandler subscribed to the session.
func NewEventsHandler(s *session.Session) *EventsHandler {
	h := &EventsHandler{
		clients: make(map[*websocket.Conn]chan session.Event),
	}
	s.Subscribe(h.fanout)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	events := make(chan session.Event, eventBacklog)

	h.mu.Lock()
	h.clients[conn] = events
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		// fanout only sends while holding the read lock, so closing here
		// cannot race a send; the writer drains and exits.
		close(events)
		h.mu.Unlock()
	}()

	go h.writeLoop(conn, events)

	// Keep the connection registered until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// fanout delivers one session event to every connected client without
// blocking the pipeline: a full queue drops its oldest event first.
func (h *EventsHandler) fanout(event session.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, events := range h.clients {
		select {
		case events <- event:
		default:
			select {
			case <-events:
			default:
			}
			select {
			case events <- event:
			default:
			}
		}
	}
}

// writeLoop serializes events to one client connection.
func (h *EventsHandler) writeLoop(conn *websocket.Conn, events <-chan session.Event) {
	for event := range events {
		msg, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
