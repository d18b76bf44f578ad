// Package transport delivers commands to the actuator controller over a
// websocket, HTTP or a serial line.
package transport

import "encoding/json"

// Event names exchanged over the websocket channel.
const (
	EventUpdateGesture = "update_gesture"
	EventServoUpdate   = "servo_update"
	EventUARTResponse  = "uart_response"
	EventError         = "error"
)

// Response statuses carried by uart_response and HTTP acknowledgements.
const (
	StatusSuccess  = "success"
	StatusNoChange = "no_change"
	StatusError    = "error"
)

// Envelope is one websocket message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope for event.
func NewEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// CommandPayload carries a single command letter.
type CommandPayload struct {
	Command string `json:"command"`
}

// PairPayload carries both hand labels instead of a resolved command.
type PairPayload struct {
	RightHand string `json:"right_hand"`
	LeftHand  string `json:"left_hand"`
}

// Response acknowledges a command or reports a failure.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Command string `json:"command,omitempty"`
}

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ServoAngles maps a servo channel to its angle in degrees.
type ServoAngles map[int]int
