package monitor

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

// RetryInterval is how long the client waits before redialing the event stream.
const RetryInterval = time.Second

type eventMsg app.Event

type connectedMsg struct{ url string }

type disconnectedMsg struct{ err error }

// Listen dials url (the server's /api/events endpoint) and delivers messages for
// the Model on the returned channel until ctx is cancelled. Dropped connections are redialed.
func Listen(ctx context.Context, url string) <-chan tea.Msg {
	out := make(chan tea.Msg, 16)
	go func() {
		defer close(out)
		for {
			err := stream(ctx, url, out)
			if ctx.Err() != nil {
				return
			}
			if !send(ctx, out, disconnectedMsg{err: err}) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(RetryInterval):
			}
		}
	}()
	return out
}

func stream(ctx context.Context, url string, out chan<- tea.Msg) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if !send(ctx, out, connectedMsg{url: url}) {
		return ctx.Err()
	}

	for {
		var ev app.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if !send(ctx, out, eventMsg(ev)) {
			return ctx.Err()
		}
	}
}

func send(ctx context.Context, out chan<- tea.Msg, msg tea.Msg) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// waitFor returns a command that blocks for the next message from ch.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			log.Println("Event stream closed")
			return tea.Quit()
		}
		return msg
	}
}
