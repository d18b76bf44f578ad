package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// Transport is a closable command sink.
type Transport interface {
	Send(ctx context.Context, c gesture.Classification) error
	Close() error
}

// Discard accepts every command and delivers nothing.
type Discard struct{}

func (Discard) Send(ctx context.Context, c gesture.Classification) error { return nil }
func (Discard) Close() error                                             { return nil }

// New builds the transport described by cfg. onEvent only applies to websockets.
func New(cfg config.TransportConfig, onEvent func(Envelope)) (Transport, error) {
	switch cfg.Kind {
	case config.TransportWebSocket:
		return NewWebSocket(cfg.URL, onEvent), nil
	case config.TransportHTTP:
		return NewHTTP(cfg.URL, &http.Client{}), nil
	case config.TransportSerial:
		port, err := OpenSerialPort(cfg.Port, cfg.Baud, cfg.Settle())
		if err != nil {
			return nil, err
		}
		return NewSerial(port), nil
	case config.TransportExec:
		return OpenDriver(cfg.DriverDir, cfg.Driver)
	case config.TransportNone, "":
		return Discard{}, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Kind)
}
