package monitor

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Follow writes one line per emitted command and per connection change until
// msgs is closed or ctx is done. It is the fallback when stdout is not a terminal.
func Follow(ctx context.Context, msgs <-chan tea.Msg, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := writePlain(w, msg); err != nil {
				return err
			}
		}
	}
}

func writePlain(w io.Writer, msg tea.Msg) error {
	var err error
	switch msg := msg.(type) {
	case connectedMsg:
		_, err = fmt.Fprintf(w, "connected %s\n", msg.url)
	case disconnectedMsg:
		_, err = fmt.Fprintf(w, "disconnected: %v\n", msg.err)
	case eventMsg:
		if !msg.Emitted {
			return nil
		}
		c := msg.Classification
		_, err = fmt.Fprintf(w, "%s %s left=%q right=%q\n",
			msg.Timestamp.Format("15:04:05.000"), c.Command, c.Left, c.Right)
	}
	return err
}
