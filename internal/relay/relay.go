// Package relay is the controller side of the link: it accepts gesture
// messages over websocket or HTTP, turns them into single-letter commands
// for the microcontroller and keeps the servo angle table.
package relay

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/transmit"
	"github.com/ayusman/mudra/internal/transport"
)

// ErrNoActuator is returned when a command must be written but no controller is attached.
var ErrNoActuator = errors.New("controller not connected")

// Options configures a Relay.
type Options struct {
	// Actuator receives "<letter>\r\n" lines. Nil means no controller is attached.
	Actuator  io.Writer
	StepAngle int
	StaticDir string
	Console   io.Writer
}

// Relay forwards commands to the actuator, suppressing repeats.
type Relay struct {
	servos    *ServoBank
	console   *Console
	staticDir string
	policy    transmit.Policy

	mu       sync.Mutex
	actuator io.Writer
	state    transmit.State
}

// New creates a Relay.
func New(opts Options) *Relay {
	return &Relay{
		servos:    NewServoBank(opts.StepAngle),
		console:   NewConsole(opts.Console),
		staticDir: opts.StaticDir,
		policy:    transmit.ChangeGated{},
		actuator:  opts.Actuator,
	}
}

// SetActuator attaches or detaches (nil) the controller.
func (r *Relay) SetActuator(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actuator = w
}

// Last returns the last command successfully written, or 0 when none has been.
func (r *Relay) Last() gesture.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Last
}

// Console returns the relay's activity log.
func (r *Relay) Console() *Console {
	return r.console
}

// Servos returns the servo bank.
func (r *Relay) Servos() *ServoBank {
	return r.servos
}

// NormalizeCommand trims and upper-cases raw. Anything that is not a single
// letter A-M becomes the stop command, and ok reports whether raw was valid.
func NormalizeCommand(raw string) (c gesture.Command, ok bool) {
	c, err := gesture.ParseCommand(raw)
	if err != nil {
		return gesture.Stop, false
	}
	return c, true
}

// HandleCommand writes the command to the actuator unless it repeats the last
// one. The remembered command only changes after a successful write.
func (r *Relay) HandleCommand(raw string) (transport.Response, error) {
	r.console.Received("Command", strings.TrimSpace(raw))

	c, ok := NormalizeCommand(raw)
	if !ok {
		r.console.Warn(fmt.Sprintf("Invalid command %q received, defaulting to 'A'", raw))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next, emit := r.policy.Next(r.state, c, time.Now())
	if !emit {
		r.console.Warn("Command unchanged (not resent)")
		return transport.Response{
			Status:  transport.StatusNoChange,
			Message: "Command unchanged: " + c.String(),
			Command: c.String(),
		}, nil
	}

	if r.actuator == nil {
		r.console.Error("Controller not connected - command not sent")
		return transport.Response{}, ErrNoActuator
	}

	if err := transport.WriteCommand(r.actuator, c); err != nil {
		r.console.Error(fmt.Sprintf("Serial write failed: %v", err))
		return transport.Response{}, fmt.Errorf("write command %s: %w", c, err)
	}
	r.state = next
	r.console.Sent(c.String())

	return transport.Response{
		Status:  transport.StatusSuccess,
		Message: "Sent: " + c.String(),
		Command: c.String(),
	}, nil
}

// HandlePair steps the servo selected by the left hand, then forwards the
// resolved command through HandleCommand. Unknown labels count as no gesture.
func (r *Relay) HandlePair(p transport.PairPayload) (transport.ServoAngles, transport.Response, error) {
	r.console.Received("Gesture", fmt.Sprintf("right %q, left %q", p.RightHand, p.LeftHand))

	left, err := gesture.ParseLeftSelection(p.LeftHand)
	if err != nil {
		left = gesture.LeftUnknown
	}
	right, err := gesture.ParseRightDirection(p.RightHand)
	if err != nil {
		right = gesture.RightNoGesture
	}

	angles, moved := r.servos.Apply(left, right)
	if moved {
		log.Printf("Motor %d moved to %d degrees", left.Motor(), angles[left.Motor()-1])
	}

	resp, err := r.HandleCommand(gesture.Resolve(left, right).String())
	return angles, resp, err
}
