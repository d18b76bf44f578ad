package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/gesture"
)

// WebSocket pushes commands over a persistent websocket connection. The
// connection is dialed on first use and redialed on the next send after a failure.
type WebSocket struct {
	url     string
	dialer  *websocket.Dialer
	onEvent func(Envelope)

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket creates a websocket transport for url. onEvent, when set, receives
// every message the controller sends back.
func NewWebSocket(url string, onEvent func(Envelope)) *WebSocket {
	return &WebSocket{
		url:     url,
		dialer:  &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		onEvent: onEvent,
	}
}

// Send writes an update_gesture message carrying the command.
func (w *WebSocket) Send(ctx context.Context, c gesture.Classification) error {
	env, err := NewEnvelope(EventUpdateGesture, CommandPayload{Command: c.Command.String()})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
		if err != nil {
			return fmt.Errorf("dial %s: %w", w.url, err)
		}
		w.conn = conn
		go w.readLoop(conn)
		log.Printf("Connected to controller at %s", w.url)
	}

	// Zero when ctx has no deadline, which clears any earlier one.
	deadline, _ := ctx.Deadline()
	w.conn.SetWriteDeadline(deadline)

	if err := w.conn.WriteJSON(env); err != nil {
		w.conn.Close()
		w.conn = nil
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close closes the connection if one is open.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *WebSocket) readLoop(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			w.drop(conn)
			return
		}

		switch env.Event {
		case EventServoUpdate:
			var angles ServoAngles
			if err := json.Unmarshal(env.Data, &angles); err == nil {
				log.Printf("Servo angles updated: %v", angles)
			}
		case EventUARTResponse:
			var resp Response
			if err := json.Unmarshal(env.Data, &resp); err == nil {
				log.Printf("Controller response: %s (%s)", resp.Status, resp.Message)
			}
		case EventError:
			var e ErrorPayload
			if err := json.Unmarshal(env.Data, &e); err == nil {
				log.Printf("Controller error: %s", e.Message)
			}
		}

		if w.onEvent != nil {
			w.onEvent(env)
		}
	}
}

func (w *WebSocket) drop(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == conn {
		w.conn = nil
	}
	conn.Close()
}
