package transport

import (
	"context"
	"fmt"

	"github.com/ayusman/mudra/internal/driver"
	"github.com/ayusman/mudra/internal/gesture"
)

// Exec hands each command to an external driver program.
type Exec struct {
	executor *driver.Executor
	driver   *driver.Driver
}

// NewExec creates a transport that runs d through executor.
func NewExec(executor *driver.Executor, d *driver.Driver) *Exec {
	return &Exec{executor: executor, driver: d}
}

// OpenDriver discovers the drivers in dir and returns an Exec for the named one.
func OpenDriver(dir, name string) (*Exec, error) {
	mgr := driver.NewManager(dir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("discover drivers in %s: %w", dir, err)
	}
	d, err := mgr.Get(name)
	if err != nil {
		return nil, fmt.Errorf("driver %q in %s: %w", name, dir, err)
	}
	return NewExec(driver.NewExecutor(0), d), nil
}

// Send runs the driver once. Commands outside the manifest's list are skipped.
func (e *Exec) Send(ctx context.Context, c gesture.Classification) error {
	command := c.Command.String()
	if !e.driver.Manifest.Accepts(command) {
		return nil
	}

	resp, err := e.executor.Execute(ctx, e.driver, &driver.Request{
		Command:   command,
		LeftHand:  c.Left.String(),
		RightHand: c.Right.String(),
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("driver %s rejected %s: %s", e.driver.Manifest.Name, command, resp.Error)
	}
	return nil
}

// Close is a no-op; each send is its own process.
func (e *Exec) Close() error {
	return nil
}
