package transmit

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Defaults for Options.
const (
	DefaultTimeout   = 2 * time.Second
	DefaultQueueSize = 16
)

// ErrQueueFull is recorded when an emission is dropped because deliveries are backed up.
var ErrQueueFull = errors.New("delivery queue full")

// Transport delivers one classification to the controller.
type Transport interface {
	Send(ctx context.Context, c gesture.Classification) error
}

// Delivery describes the outcome of one emission.
type Delivery struct {
	Classification gesture.Classification
	EmittedAt      time.Time
	Err            error
}

// Recorder observes deliveries, successful or not.
type Recorder interface {
	Record(d Delivery)
}

// Options configures a Transmitter.
type Options struct {
	Policy    Policy
	Transport Transport
	Recorder  Recorder
	Timeout   time.Duration
	QueueSize int
	Now       func() time.Time
}

type outgoing struct {
	c  gesture.Classification
	at time.Time
}

// Transmitter owns the emission state and hands emitted commands to a single
// delivery worker, so they reach the transport in the order they were decided.
// Submit never blocks on the transport; the state is not rolled back when a
// delivery fails.
type Transmitter struct {
	policy    Policy
	transport Transport
	recorder  Recorder
	timeout   time.Duration
	now       func() time.Time

	mu     sync.Mutex
	state  State
	closed bool
	queue  chan outgoing
	done   chan struct{}

	// pending counts emissions not yet delivered or failed; idle is
	// signalled on mu when it drops to zero.
	pending int
	idle    *sync.Cond
}

// New creates a Transmitter and starts its delivery worker.
func New(opts Options) *Transmitter {
	if opts.Policy == nil {
		opts.Policy = ChangeGated{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t := &Transmitter{
		policy:    opts.Policy,
		transport: opts.Transport,
		recorder:  opts.Recorder,
		timeout:   opts.Timeout,
		now:       opts.Now,
		queue:     make(chan outgoing, opts.QueueSize),
		done:      make(chan struct{}),
	}
	t.idle = sync.NewCond(&t.mu)
	go t.deliver()
	return t
}

// Submit offers the classification of one frame. It reports whether the command
// was emitted.
func (t *Transmitter) Submit(c gesture.Classification) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}

	now := t.now()
	next, emit := t.policy.Next(t.state, c.Command, now)
	t.state = next
	if !emit {
		return false
	}

	select {
	case t.queue <- outgoing{c: c, at: now}:
		t.pending++
	default:
		log.Printf("Dropped command %s: %v", c.Command, ErrQueueFull)
		t.record(Delivery{Classification: c, EmittedAt: now, Err: ErrQueueFull})
	}
	return true
}

// State returns a snapshot of the emission state.
func (t *Transmitter) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Policy returns the emission policy in use.
func (t *Transmitter) Policy() Policy {
	return t.policy
}

// Flush waits until every emission submitted so far has been delivered or failed.
func (t *Transmitter) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.pending > 0 {
		t.idle.Wait()
	}
}

// Close stops accepting submissions and waits for queued deliveries to finish.
func (t *Transmitter) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return nil
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()

	<-t.done
	return nil
}

func (t *Transmitter) deliver() {
	defer close(t.done)

	for o := range t.queue {
		var err error
		if t.transport != nil {
			ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
			err = t.transport.Send(ctx, o.c)
			cancel()
		}
		if err != nil {
			log.Printf("Failed to deliver command %s: %v", o.c.Command, err)
		} else {
			log.Printf("Sent command %s (left: %s, right: %s)", o.c.Command, o.c.Left, o.c.Right)
		}
		t.record(Delivery{Classification: o.c, EmittedAt: o.at, Err: err})

		t.mu.Lock()
		t.pending--
		if t.pending == 0 {
			t.idle.Broadcast()
		}
		t.mu.Unlock()
	}
}

func (t *Transmitter) record(d Delivery) {
	if t.recorder != nil {
		t.recorder.Record(d)
	}
}
