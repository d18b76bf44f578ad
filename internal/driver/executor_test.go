package driver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, dir, name, body string) *Driver {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Driver{
		Manifest:   Manifest{Name: name, Version: "1.0.0", Executable: name},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	d := writeScript(t, t.TempDir(), "ok.sh", "cat <<'JSON'\n{\"success\":true,\"data\":{\"channel\":2}}\nJSON\n")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), d, &Request{Command: "B"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("unexpected response %+v", resp)
	}

	var data map[string]int
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["channel"] != 2 {
		t.Errorf("channel = %d, want 2", data["channel"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	d := writeScript(t, t.TempDir(), "echo.sh", "INPUT=$(cat)\necho \"{\\\"success\\\":true,\\\"data\\\":$INPUT}\"\n")

	req := &Request{
		Command:   "K",
		LeftHand:  "Motor 5",
		RightHand: "Rotate Anticlockwise",
		Config:    json.RawMessage(`{"channel":4}`),
	}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), d, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Command != "K" || got.LeftHand != "Motor 5" || got.RightHand != "Rotate Anticlockwise" {
		t.Errorf("driver saw %+v", got)
	}
	if string(got.Config) != `{"channel":4}` {
		t.Errorf("config = %s", got.Config)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tests := []struct {
		name    string
		body    string
		timeout time.Duration
		wantErr string
	}{
		{"timeout", "exec sleep 5\n", 100 * time.Millisecond, "timed out"},
		{"non-zero exit", "echo 'no i2c bus' >&2\nexit 1\n", time.Second, "no i2c bus"},
		{"invalid json", "echo 'not json'\n", time.Second, "failed to parse driver response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := writeScript(t, t.TempDir(), "bad.sh", tt.body)
			_, err := NewExecutor(tt.timeout).Execute(context.Background(), d, &Request{Command: "A"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_CallerDeadline(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	d := writeScript(t, t.TempDir(), "slow.sh", "exec sleep 5\n")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := NewExecutor(0).Execute(ctx, d, &Request{Command: "A"}); err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("caller deadline was not honored")
	}
}

func TestExecutor_Execute_MissingExecutable(t *testing.T) {
	d := &Driver{
		Manifest:   Manifest{Name: "ghost", Executable: "ghost"},
		Path:       t.TempDir(),
		Executable: "/nonexistent/path/to/driver",
	}
	if _, err := NewExecutor(time.Second).Execute(context.Background(), d, &Request{Command: "A"}); err == nil {
		t.Error("expected error for missing executable")
	}
}

func TestManifest_Accepts(t *testing.T) {
	all := Manifest{}
	if !all.Accepts("A") || !all.Accepts("M") {
		t.Error("empty command list should accept everything")
	}

	some := Manifest{Commands: []string{"A", "B", "C"}}
	if !some.Accepts("B") {
		t.Error("expected B to be accepted")
	}
	if some.Accepts("D") {
		t.Error("expected D to be rejected")
	}
}
