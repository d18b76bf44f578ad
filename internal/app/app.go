// Package app runs the gesture pipeline: camera frames go through the hand
// detector and classifier, and the resulting commands go to the transmitter.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/transmit"
)

// ErrNoDetector is returned by Start when no hand detector was configured.
var ErrNoDetector = errors.New("no hand detector configured")

// Config holds configuration options for the application.
type Config struct {
	Store       *store.Store
	Camera      capture.Camera
	Detector    detector.Detector
	Transmitter *transmit.Transmitter
	FPS         int
	// Preview keeps a JPEG copy of the latest frame for the MJPEG stream.
	Preview bool
}

// Event is published once per processed frame.
type Event struct {
	Classification gesture.Classification `json:"classification"`
	Hands          int                    `json:"hands"`
	Emitted        bool                   `json:"emitted"`
	Enabled        bool                   `json:"enabled"`
	Frame          uint64                 `json:"frame"`
	Timestamp      time.Time              `json:"timestamp"`
}

// App is the main application that turns hand landmarks into motor commands.
type App struct {
	config      Config
	camera      capture.Camera
	detector    detector.Detector
	transmitter *transmit.Transmitter

	// frameMu orders a frame's result against a pause.
	frameMu sync.Mutex

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	last    Event
	frames  uint64
	subs    map[int]func(Event)
	nextSub int
	preview []byte
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}

	a := &App{
		config:      config,
		camera:      config.Camera,
		detector:    config.Detector,
		transmitter: config.Transmitter,
		enabled:     true,
		subs:        make(map[int]func(Event)),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(0)
	}

	if a.transmitter == nil {
		a.transmitter = transmit.New(transmit.Options{})
	}

	if config.Store != nil {
		a.enabled = config.Store.Settings().GetBool(store.SettingEnabled, true)
	}

	a.last = Event{
		Classification: gesture.ClassifyFrame(nil),
		Enabled:        a.enabled,
		Timestamp:      time.Now(),
	}

	return a
}

// ProcessHands classifies one frame of hands, offers the command to the
// transmitter and publishes the result to subscribers.
func (a *App) ProcessHands(hands []detector.HandLandmarks) Event {
	c := gesture.ClassifyFrame(hands)
	emitted := a.transmitter.Submit(c)

	a.mu.Lock()
	a.frames++
	ev := Event{
		Classification: c,
		Hands:          len(hands),
		Emitted:        emitted,
		Enabled:        a.enabled,
		Frame:          a.frames,
		Timestamp:      time.Now(),
	}
	a.last = ev
	subs := make([]func(Event), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return ev
}

// Subscribe registers fn to receive every Event. The returned function removes it.
// fn runs on the pipeline goroutine and must not block.
func (a *App) Subscribe(fn func(Event)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// Status returns the most recent Event.
func (a *App) Status() Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ev := a.last
	ev.Enabled = a.enabled
	return ev
}

// SetEnabled pauses or resumes detection. Pausing sends an empty frame so the
// controller receives the stop command.
func (a *App) SetEnabled(enabled bool) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			log.Printf("Failed to persist enabled setting: %v", err)
		}
	}

	if changed && !enabled {
		a.ProcessHands(nil)
	}
	if changed {
		log.Printf("Detection enabled: %v", enabled)
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Start opens the camera and begins the detection loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if a.detector == nil {
		return ErrNoDetector
	}
	if s, ok := a.detector.(detector.Starter); ok {
		if err := s.Start(); err != nil {
			return fmt.Errorf("start detector: %w", err)
		}
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(a.config.FPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection loop, sends a final stop command and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	a.ProcessHands(nil)
	a.transmitter.Flush()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Running reports whether the detection loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Transmitter returns the command transmitter.
func (a *App) Transmitter() *transmit.Transmitter {
	return a.transmitter
}

// Preview returns the latest frame as JPEG, or nil when none is available.
func (a *App) Preview() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.preview
}
