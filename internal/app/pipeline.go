package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"
)

// runPipeline reads a frame per tick, detects hands and classifies them.
// Read and detection errors skip the frame.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			a.processFrame()
		}
	}
}

func (a *App) processFrame() {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return
	}
	defer frame.Close()

	if a.config.Preview {
		a.storePreview(frame)
	}

	d := a.Detector()
	if d == nil {
		return
	}

	hands, err := d.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	// A pause that landed during detection drops this frame.
	if !a.IsEnabled() {
		return
	}
	a.ProcessHands(hands)
}

func (a *App) storePreview(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.mu.Lock()
	a.preview = data
	a.mu.Unlock()
}
