package relay

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/transport"
)

type flakyWriter struct {
	bytes.Buffer
	err error
}

func (f *flakyWriter) Write(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.Buffer.Write(p)
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		raw    string
		want   gesture.Command
		wantOK bool
	}{
		{"B", gesture.CommandB, true},
		{" m ", gesture.CommandM, true},
		{"k", gesture.CommandK, true},
		{"N", gesture.Stop, false},
		{"", gesture.Stop, false},
		{"AB", gesture.Stop, false},
		{"1", gesture.Stop, false},
	}

	for _, tt := range tests {
		got, ok := NormalizeCommand(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeCommand(%q) = %s, %v; want %s, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRelay_HandleCommand(t *testing.T) {
	out := &flakyWriter{}
	r := New(Options{Actuator: out})

	steps := []struct {
		raw        string
		wantStatus string
	}{
		{"b", transport.StatusSuccess},
		{"B", transport.StatusNoChange},
		{"zz", transport.StatusSuccess}, // becomes A
		{"A", transport.StatusNoChange},
		{"C", transport.StatusSuccess},
	}

	for _, s := range steps {
		resp, err := r.HandleCommand(s.raw)
		if err != nil {
			t.Fatalf("HandleCommand(%q) error = %v", s.raw, err)
		}
		if resp.Status != s.wantStatus {
			t.Errorf("HandleCommand(%q) status = %s, want %s", s.raw, resp.Status, s.wantStatus)
		}
	}

	if got := out.String(); got != "B\r\nA\r\nC\r\n" {
		t.Errorf("actuator received %q", got)
	}
	if r.Last() != gesture.CommandC {
		t.Errorf("Last() = %s, want C", r.Last())
	}
}

func TestRelay_HandleCommand_NoActuator(t *testing.T) {
	r := New(Options{})

	_, err := r.HandleCommand("B")
	if !errors.Is(err, ErrNoActuator) {
		t.Fatalf("HandleCommand() error = %v, want ErrNoActuator", err)
	}
	if r.Last() != 0 {
		t.Errorf("Last() = %s, want unset", r.Last())
	}

	// Once attached, the same command is not treated as a repeat.
	out := &bytes.Buffer{}
	r.SetActuator(out)
	resp, err := r.HandleCommand("B")
	if err != nil || resp.Status != transport.StatusSuccess {
		t.Fatalf("HandleCommand() = %+v, %v", resp, err)
	}
	if out.String() != "B\r\n" {
		t.Errorf("actuator received %q", out.String())
	}
}

func TestRelay_HandleCommand_WriteFailure(t *testing.T) {
	out := &flakyWriter{err: errors.New("unplugged")}
	r := New(Options{Actuator: out})

	if _, err := r.HandleCommand("D"); err == nil {
		t.Fatal("expected write error")
	}

	out.err = nil
	resp, err := r.HandleCommand("D")
	if err != nil || resp.Status != transport.StatusSuccess {
		t.Errorf("retry after failure = %+v, %v; want success", resp, err)
	}
}

func TestRelay_HandlePair(t *testing.T) {
	out := &bytes.Buffer{}
	console := &bytes.Buffer{}
	r := New(Options{Actuator: out, StepAngle: 2, Console: console})

	angles, resp, err := r.HandlePair(transport.PairPayload{LeftHand: "Motor 5", RightHand: "Rotate Anticlockwise"})
	if err != nil {
		t.Fatalf("HandlePair() error = %v", err)
	}
	if angles[4] != DefaultAngle-2 {
		t.Errorf("motor 5 angle = %d, want %d", angles[4], DefaultAngle-2)
	}
	if resp.Command != "K" || resp.Status != transport.StatusSuccess {
		t.Errorf("response = %+v", resp)
	}

	// Repeated pair moves the servo again but does not resend the command.
	angles, resp, _ = r.HandlePair(transport.PairPayload{LeftHand: "Motor 5", RightHand: "Rotate Anticlockwise"})
	if angles[4] != DefaultAngle-4 || resp.Status != transport.StatusNoChange {
		t.Errorf("second pair = %v, %+v", angles[4], resp)
	}

	// Garbage labels resolve to stop without moving anything.
	angles, resp, _ = r.HandlePair(transport.PairPayload{LeftHand: "Motor 9", RightHand: "spin"})
	if resp.Command != "A" || angles[4] != DefaultAngle-4 {
		t.Errorf("garbage pair = %v, %+v", angles, resp)
	}

	if got := out.String(); got != "K\r\nA\r\n" {
		t.Errorf("actuator received %q", got)
	}
	if !strings.Contains(console.String(), "Sending") {
		t.Error("expected console to log the serial send")
	}
}
