package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs drivers with a per-invocation timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A zero timeout relies on the caller's context alone.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Execute runs d with req on stdin and parses stdout as a Response.
func (e *Executor) Execute(ctx context.Context, d *Driver, req *Request) (*Response, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.Executable)
	cmd.Dir = d.Path
	cmd.Stdin = bytes.NewReader(reqJSON)
	// Orphaned grandchildren must not hold stdout open past cancellation.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("driver %s timed out: %w", d.Manifest.Name, ctx.Err())
	}
	if err != nil {
		if s := bytes.TrimSpace(stderr.Bytes()); len(s) > 0 {
			return nil, fmt.Errorf("driver %s failed: %w, stderr: %s", d.Manifest.Name, err, s)
		}
		return nil, fmt.Errorf("driver %s failed: %w", d.Manifest.Name, err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse driver response: %w, stdout: %s", err, stdout.String())
	}
	return &response, nil
}
