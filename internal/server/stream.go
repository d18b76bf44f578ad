package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// streamInterval paces the MJPEG stream at roughly 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the pipeline's preview frames as MJPEG.
type StreamHandler struct {
	preview func() []byte
}

// NewStreamHandler creates a new StreamHandler reading JPEG frames from preview.
func NewStreamHandler(preview func() []byte) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame := h.preview()
		if len(frame) == 0 || bytes.Equal(frame, last) {
			continue
		}
		last = frame

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
