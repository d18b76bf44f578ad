package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	// eventBuffer is how many events may wait for the broadcaster before new ones are dropped.
	eventBuffer = 64

	// writeWait bounds each write so one stalled client cannot hold up the others.
	writeWait = 2 * time.Second
)

// EventsHandler broadcasts every pipeline Event to websocket clients.
type EventsHandler struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	events      chan []byte
	done        chan struct{}
	finished    chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
}

// NewEventsHandler subscribes to p and starts broadcasting.
func NewEventsHandler(p Pipeline) *EventsHandler {
	h := &EventsHandler{
		clients:  make(map[*websocket.Conn]struct{}),
		events:   make(chan []byte, eventBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go h.broadcast(h.events, h.done)
	h.unsubscribe = p.Subscribe(h.publish)
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

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close unsubscribes from the pipeline and waits for the broadcaster to stop.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() {
		h.unsubscribe()
		close(h.done)
	})
	<-h.finished
}

// publish runs on the pipeline goroutine. It only touches the channel, so it
// never waits on clients or on the client list.
func (h *EventsHandler) publish(ev app.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to encode event: %v", err)
		return
	}

	select {
	case <-h.done:
	case h.events <- msg:
	default:
	}
}

// broadcast sends queued events to all connected clients until done is closed.
func (h *EventsHandler) broadcast(events <-chan []byte, done <-chan struct{}) {
	defer close(h.finished)

	for {
		select {
		case <-done:
			return
		case msg := <-events:
			for _, conn := range h.snapshot() {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.remove(conn)
					conn.Close()
				}
			}
		}
	}
}

func (h *EventsHandler) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}

func (h *EventsHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
