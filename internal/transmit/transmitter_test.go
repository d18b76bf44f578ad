package transmit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

type fakeTransport struct {
	mu    sync.Mutex
	sent  []gesture.Command
	err   error
	block chan struct{}
}

func (f *fakeTransport) Send(ctx context.Context, c gesture.Classification) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.Command)
	return f.err
}

func (f *fakeTransport) Sent() []gesture.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gesture.Command(nil), f.sent...)
}

type fakeRecorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (r *fakeRecorder) Record(d Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
}

func (r *fakeRecorder) All() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

func classification(c gesture.Command) gesture.Classification {
	return gesture.Classification{Command: c}
}

func TestTransmitter_ChangeGated(t *testing.T) {
	transport := &fakeTransport{}
	recorder := &fakeRecorder{}
	tx := New(Options{Transport: transport, Recorder: recorder})
	defer tx.Close()

	var emitted int
	for _, c := range commands("AABBBAC") {
		if tx.Submit(classification(c)) {
			emitted++
		}
	}
	tx.Flush()

	if emitted != 4 {
		t.Errorf("emitted %d, want 4", emitted)
	}
	if got := string(commandBytes(transport.Sent())); got != "ABAC" {
		t.Errorf("transport received %q, want %q", got, "ABAC")
	}
	if n := len(recorder.All()); n != 4 {
		t.Errorf("recorded %d deliveries, want 4", n)
	}
	if s := tx.State(); s.Last != gesture.CommandC {
		t.Errorf("state holds %s, want C", s.Last)
	}
}

func TestTransmitter_FailureKeepsState(t *testing.T) {
	transport := &fakeTransport{err: errors.New("link down")}
	recorder := &fakeRecorder{}
	tx := New(Options{Transport: transport, Recorder: recorder})
	defer tx.Close()

	if !tx.Submit(classification(gesture.CommandB)) {
		t.Fatal("first submit should emit")
	}
	tx.Flush()

	if tx.Submit(classification(gesture.CommandB)) {
		t.Error("failed delivery must still count as sent for deduplication")
	}
	if s := tx.State(); s.Last != gesture.CommandB {
		t.Errorf("state holds %s, want B", s.Last)
	}

	deliveries := recorder.All()
	if len(deliveries) != 1 || deliveries[0].Err == nil {
		t.Errorf("expected one failed delivery, got %+v", deliveries)
	}
}

func TestTransmitter_SubmitDoesNotWaitForTransport(t *testing.T) {
	transport := &fakeTransport{block: make(chan struct{})}
	tx := New(Options{Transport: transport, QueueSize: 4})

	done := make(chan struct{})
	go func() {
		tx.Submit(classification(gesture.CommandA))
		tx.Submit(classification(gesture.CommandB))
		tx.Submit(classification(gesture.CommandC))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a slow transport")
	}

	close(transport.block)
	tx.Close()

	if got := string(commandBytes(transport.Sent())); got != "ABC" {
		t.Errorf("delivery order %q, want %q", got, "ABC")
	}
}

func TestTransmitter_QueueFull(t *testing.T) {
	transport := &fakeTransport{block: make(chan struct{})}
	recorder := &fakeRecorder{}
	tx := New(Options{Transport: transport, Recorder: recorder, QueueSize: 1})

	// The worker holds the first command; the second fills the queue.
	tx.Submit(classification(gesture.CommandA))
	deadline := time.Now().Add(time.Second)
	for len(tx.queue) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	tx.Submit(classification(gesture.CommandB))

	if !tx.Submit(classification(gesture.CommandC)) {
		t.Error("a dropped command still counts as emitted")
	}

	var dropped int
	for _, d := range recorder.All() {
		if errors.Is(d.Err, ErrQueueFull) {
			dropped++
		}
	}
	if dropped != 1 {
		t.Errorf("dropped %d, want 1", dropped)
	}

	close(transport.block)
	tx.Close()

	if got := string(commandBytes(transport.Sent())); got != "AB" {
		t.Errorf("delivered %q, want %q", got, "AB")
	}
}

func TestTransmitter_TimeGated(t *testing.T) {
	now := time.Unix(0, 0)
	transport := &fakeTransport{}
	tx := New(Options{
		Policy:    TimeGated{Interval: 200 * time.Millisecond},
		Transport: transport,
		Now:       func() time.Time { return now },
	})
	defer tx.Close()

	steps := []struct {
		at   time.Duration
		cmd  gesture.Command
		want bool
	}{
		{0, gesture.CommandA, true},
		{100 * time.Millisecond, gesture.CommandB, false},
		{250 * time.Millisecond, gesture.CommandB, true},
		{300 * time.Millisecond, gesture.CommandC, false},
		{450 * time.Millisecond, gesture.CommandB, true},
	}

	for _, s := range steps {
		now = time.Unix(0, 0).Add(s.at)
		if got := tx.Submit(classification(s.cmd)); got != s.want {
			t.Errorf("at %v: emitted = %v, want %v", s.at, got, s.want)
		}
	}
	tx.Flush()

	if got := string(commandBytes(transport.Sent())); got != "ABB" {
		t.Errorf("transport received %q, want %q", got, "ABB")
	}
}

func TestTransmitter_Close(t *testing.T) {
	transport := &fakeTransport{}
	tx := New(Options{Transport: transport})

	tx.Submit(classification(gesture.CommandA))
	if err := tx.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := tx.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if tx.Submit(classification(gesture.CommandB)) {
		t.Error("submit after close should not emit")
	}
	if len(transport.Sent()) != 1 {
		t.Errorf("expected queued command to be delivered before close returned")
	}
}

func TestTransmitter_NilTransport(t *testing.T) {
	recorder := &fakeRecorder{}
	tx := New(Options{Recorder: recorder})
	defer tx.Close()

	tx.Submit(classification(gesture.CommandD))
	tx.Flush()

	deliveries := recorder.All()
	if len(deliveries) != 1 || deliveries[0].Err != nil {
		t.Errorf("expected one clean delivery, got %+v", deliveries)
	}
}

func TestTransmitter_FlushWhileSubmitting(t *testing.T) {
	transport := &fakeTransport{}
	tx := New(Options{Transport: transport, QueueSize: 4})
	defer tx.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				tx.Flush()
			}
		}
	}()

	emitted := 0
	for i := 0; i < 200; i++ {
		c := gesture.CommandB
		if i%2 == 1 {
			c = gesture.CommandC
		}
		if tx.Submit(classification(c)) {
			emitted++
		}
		tx.Flush()

		// Everything submitted before Flush has reached the transport.
		if got := len(transport.Sent()); got != emitted {
			t.Fatalf("after Flush %d: sent %d, want %d", i, got, emitted)
		}
	}

	close(stop)
	wg.Wait()
}
