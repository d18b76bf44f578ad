package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
)

// Controller is the part of the pipeline the status endpoint reads and toggles.
type Controller interface {
	Status() app.Event
	SetEnabled(enabled bool)
}

// StatusHandler reports the current classification and toggles detection.
type StatusHandler struct {
	ctl Controller
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(ctl Controller) *StatusHandler {
	return &StatusHandler{ctl: ctl}
}

type statusResponse struct {
	LeftHand  string `json:"left_hand"`
	RightHand string `json:"right_hand"`
	Command   string `json:"command"`
	Hands     int    `json:"hands"`
	Emitted   bool   `json:"emitted"`
	Enabled   bool   `json:"enabled"`
	Frame     uint64 `json:"frame"`
	Timestamp string `json:"timestamp"`
}

type updateStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET (current status) and PUT {"enabled": bool}.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.status())
	case http.MethodPut:
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.ctl.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, h.status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StatusHandler) status() statusResponse {
	ev := h.ctl.Status()
	return statusResponse{
		LeftHand:  ev.Classification.Left.String(),
		RightHand: ev.Classification.Right.String(),
		Command:   ev.Classification.Command.String(),
		Hands:     ev.Hands,
		Emitted:   ev.Emitted,
		Enabled:   ev.Enabled,
		Frame:     ev.Frame,
		Timestamp: ev.Timestamp.Format(time.RFC3339Nano),
	}
}
