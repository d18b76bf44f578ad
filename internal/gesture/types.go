package gesture

import (
	"fmt"
	"strings"
)

// LeftSelection is the motor chosen by the left hand.
type LeftSelection int

const (
	// LeftNone means no left hand was seen in the frame.
	LeftNone LeftSelection = iota
	LeftFist
	LeftMotor1
	LeftMotor2
	LeftMotor3
	LeftMotor4
	LeftMotor5
	LeftMotor6
	LeftUnknown
)

var leftNames = map[LeftSelection]string{
	LeftNone:    "No Gesture Detected",
	LeftFist:    "Fist (Do Nothing)",
	LeftMotor1:  "Motor 1",
	LeftMotor2:  "Motor 2",
	LeftMotor3:  "Motor 3",
	LeftMotor4:  "Motor 4",
	LeftMotor5:  "Motor 5",
	LeftMotor6:  "Motor 6",
	LeftUnknown: "Unknown Gesture",
}

func (l LeftSelection) String() string {
	if name, ok := leftNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LeftSelection(%d)", int(l))
}

// Motor returns the selected motor number (1-6), or 0 when no motor is selected.
func (l LeftSelection) Motor() int {
	if l >= LeftMotor1 && l <= LeftMotor6 {
		return int(l-LeftMotor1) + 1
	}
	return 0
}

// MarshalText encodes the selection by its display name.
func (l LeftSelection) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts any label understood by ParseLeftSelection.
func (l *LeftSelection) UnmarshalText(b []byte) error {
	v, err := ParseLeftSelection(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLeftSelection maps a display label back to a selection. Matching ignores
// case and surrounding space; "None" and the empty string mean LeftNone, and "Fist"
// is accepted for LeftFist.
func ParseLeftSelection(s string) (LeftSelection, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return LeftNone, nil
	case "fist":
		return LeftFist, nil
	}
	for v, name := range leftNames {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	return LeftNone, fmt.Errorf("unknown left hand label %q", s)
}

// RightDirection is the rotation requested by the right hand.
type RightDirection int

const (
	// RightNoGesture means no usable right hand was seen in the frame.
	RightNoGesture RightDirection = iota
	RightClockwise
	RightAntiClockwise
)

var rightNames = map[RightDirection]string{
	RightNoGesture:     "No Gesture",
	RightClockwise:     "Rotate Clockwise",
	RightAntiClockwise: "Rotate Anticlockwise",
}

func (r RightDirection) String() string {
	if name, ok := rightNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RightDirection(%d)", int(r))
}

// MarshalText encodes the direction by its display name.
func (r RightDirection) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts any label understood by ParseRightDirection.
func (r *RightDirection) UnmarshalText(b []byte) error {
	v, err := ParseRightDirection(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRightDirection maps a display label back to a direction. The short
// forms "Clockwise", "Anticlockwise" and "Anti-clockwise" are accepted too.
func ParseRightDirection(s string) (RightDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "no gesture":
		return RightNoGesture, nil
	case "clockwise", "rotate clockwise":
		return RightClockwise, nil
	case "anticlockwise", "anti-clockwise", "rotate anticlockwise", "rotate anti-clockwise":
		return RightAntiClockwise, nil
	}
	return RightNoGesture, fmt.Errorf("unknown right hand label %q", s)
}

// Command is a single-letter instruction for the actuator controller.
// The zero value is not a valid command.
type Command byte

const (
	CommandA Command = 'A' + iota
	CommandB
	CommandC
	CommandD
	CommandE
	CommandF
	CommandG
	CommandH
	CommandI
	CommandJ
	CommandK
	CommandL
	CommandM
)

// Stop is the safe default command.
const Stop = CommandA

// Valid reports whether c is in the alphabet A-M.
func (c Command) Valid() bool {
	return c >= CommandA && c <= CommandM
}

func (c Command) String() string {
	if !c.Valid() {
		return ""
	}
	return string(rune(c))
}

// MarshalText encodes the command as its letter.
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a command letter.
func (c *Command) UnmarshalText(b []byte) error {
	v, err := ParseCommand(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCommand accepts a single letter A-M in either case, ignoring surrounding space.
func ParseCommand(s string) (Command, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid command %q", s)
	}
	c := Command(s[0])
	if !c.Valid() {
		return 0, fmt.Errorf("invalid command %q", s)
	}
	return c, nil
}
