package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrNotConnected is returned when a send is attempted on a closed serial link.
var ErrNotConnected = errors.New("serial port not connected")

// OpenSerialPort opens name at baud and waits settle for the board to reset.
func OpenSerialPort(name string, baud int, settle time.Duration) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if settle > 0 {
		time.Sleep(settle)
	}
	return port, nil
}

// WriteCommand writes one command line ("B\r\n") to w.
func WriteCommand(w io.Writer, c gesture.Command) error {
	if !c.Valid() {
		return fmt.Errorf("invalid command %d", c)
	}
	_, err := io.WriteString(w, c.String()+"\r\n")
	return err
}

// Serial writes command letters straight to a microcontroller.
type Serial struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// NewSerial wraps an already open port.
func NewSerial(port io.WriteCloser) *Serial {
	return &Serial{port: port}
}

// Send writes the command followed by CRLF.
func (s *Serial) Send(ctx context.Context, c gesture.Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteCommand(s.port, c.Command); err != nil {
		return fmt.Errorf("write serial: %w", err)
	}
	return nil
}

// Close closes the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
